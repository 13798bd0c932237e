// Every order status transition lands here through the event stream.
// The worker turns each transition into an in-app notification for the
// order owner, and a completed order additionally triggers an email.
package worker

import (
	"database/sql"
	"encoding/json"
	"log"
	"strconv"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/kawooya/remitta/internal/handler"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/stream"
)

func (wk *Worker) OrderStatusWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: orderStatusGroupID,
		Topic:   stream.OrderStatusTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close() // Ensure cleanup

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("OrderStatusWorker received cancellation signal, shutting down...")
			return
		default:
			// Poll for Kafka events
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				message := e.Value
				var orderEvent *handler.OrderEvent
				json.Unmarshal(message, &orderEvent)

				wk.notifyOrderStatusChange(orderEvent)
				if orderEvent.Status == models.OrderStatusCompleted {
					wk.sendOrderCompletedEmail(orderEvent)
				}
			case kafka.Error:
				log.Printf("Error: %v\n", e)
			case *kafka.AssignedPartitions:
				consumer.Assign(e.Partitions)
			case *kafka.RevokedPartitions:
				consumer.Unassign()
			}
		}
	}
}

func (wk *Worker) notifyOrderStatusChange(orderEvent *handler.OrderEvent) bool {
	order, found, err := wk.OrderRepo.GetOne(orderEvent.OrderID)
	if err != nil || !found {
		log.Printf("Error finding order for status notification: %v", err)
		return false
	}

	currency, found, err := wk.CurrencyRepo.GetOne(order.FromCurrencyID)
	if err != nil || !found {
		log.Printf("Error finding currency for status notification: %v", err)
		return false
	}

	amount := wk.Helper.FormatAmount(order.Amount, currency.Code)

	_, err = wk.NotificationRepo.Insert(&models.Notification{
		Title:       "Order " + order.Status,
		Description: "Your transfer order of " + amount + " is now " + order.Status,
		UserID:      sql.NullInt64{Int64: order.UserID, Valid: true},
		Type:        models.NotificationTypeUser,
	})
	if err != nil {
		log.Printf("Error creating order status notification: %v", err)
		return false
	}

	// the assigned member tracks the same transitions
	if order.MemberID.Valid {
		_, err = wk.NotificationRepo.Insert(&models.Notification{
			Title:       "Order " + order.Status,
			Description: "Order #" + strconv.FormatInt(order.ID, 10) + " you are assigned to is now " + order.Status,
			UserID:      order.MemberID,
			Type:        models.NotificationTypeUser,
		})
		if err != nil {
			log.Printf("Error creating member status notification: %v", err)
		}
	}

	return true
}

func (wk *Worker) sendOrderCompletedEmail(orderEvent *handler.OrderEvent) bool {
	user, found, err := wk.UserRepo.GetOne(orderEvent.UserID)
	if err != nil || !found {
		log.Printf("Error finding user for completion email: %v", err)
		return false
	}

	order, found, err := wk.OrderRepo.GetOne(orderEvent.OrderID)
	if err != nil || !found {
		log.Printf("Error finding order for completion email: %v", err)
		return false
	}

	currency, found, err := wk.CurrencyRepo.GetOne(order.FromCurrencyID)
	if err != nil || !found {
		log.Printf("Error finding currency for completion email: %v", err)
		return false
	}

	wk.Helper.BackgroundTask(nil, func() error {
		emailData := wk.Helper.NewEmailData()
		emailData["Name"] = user.FullName
		emailData["OrderID"] = order.ID
		emailData["Amount"] = wk.Helper.FormatAmount(order.Amount, currency.Code)

		err := wk.Mailer.Send(user.Email, emailData, "order-completed.tmpl")
		if err != nil {
			log.Printf("Error sending order completion email: %v", err)
			return err
		}

		return nil
	})

	return true
}
