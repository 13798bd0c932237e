package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/kawooya/remitta/internal/app"
	"github.com/kawooya/remitta/internal/version"
	"github.com/kawooya/remitta/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	application, err := app.NewApplication(logger)
	if err != nil {
		return err
	}
	defer application.DB.Close()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	workers := worker.New(&worker.Worker{
		KafkaStream:      application.Kafka,
		Ctx:              workerCtx,
		Helper:           application.Helper(),
		Mailer:           application.Mailer,
		OrderRepo:        application.DB.Order(),
		UserRepo:         application.DB.User(),
		CurrencyRepo:     application.DB.Currency(),
		NotificationRepo: application.DB.Notification(),
	})

	go workers.OrderStatusWorker()
	go workers.MemberAssignedWorker()

	return application.ServeHTTP()
}
