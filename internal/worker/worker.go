package worker

import (
	"context"

	"github.com/kawooya/remitta/internal/helper"
	"github.com/kawooya/remitta/internal/repository"
	"github.com/kawooya/remitta/internal/smtp"
	"github.com/kawooya/remitta/internal/stream"
)

type Worker struct {
	KafkaStream      *stream.KafkaStream
	Ctx              context.Context
	Helper           *helper.HelperRepository
	Mailer           smtp.MailerInterface
	OrderRepo        repository.OrderRepository
	UserRepo         repository.UserRepository
	CurrencyRepo     repository.CurrencyRepository
	NotificationRepo repository.NotificationRepository
}

const (
	// orderStatusGroupID is used for workers that react to order status transitions
	orderStatusGroupID = "order-status-group"

	// orderAssignedGroupID is used for workers that react to member assignments
	orderAssignedGroupID = "order-assigned-group"
)

// Our workers typically need access to the repositories and kafka event stream
// worker-specific dependencies can be passed as arguments to the worker
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream:      wk.KafkaStream,
		Ctx:              wk.Ctx,
		Helper:           wk.Helper,
		Mailer:           wk.Mailer,
		OrderRepo:        wk.OrderRepo,
		UserRepo:         wk.UserRepo,
		CurrencyRepo:     wk.CurrencyRepo,
		NotificationRepo: wk.NotificationRepo,
	}
}
