// Member assignments arrive on their own topic so the assigned member
// gets an in-app notification without slowing down the admin's request.
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

func (wk *Worker) MemberAssignedWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: orderAssignedGroupID,
		Topic:   stream.OrderAssignedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close() // Ensure cleanup

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("MemberAssignedWorker received cancellation signal, shutting down...")
			return
		default:
			// Poll for Kafka events
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				message := e.Value
				var orderEvent *handler.OrderEvent
				json.Unmarshal(message, &orderEvent)

				wk.notifyAssignedMember(orderEvent)
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

func (wk *Worker) notifyAssignedMember(orderEvent *handler.OrderEvent) bool {
	if orderEvent.MemberID == 0 {
		return false
	}

	order, found, err := wk.OrderRepo.GetOne(orderEvent.OrderID)
	if err != nil || !found {
		log.Printf("Error finding order for assignment notification: %v", err)
		return false
	}

	currency, found, err := wk.CurrencyRepo.GetOne(order.FromCurrencyID)
	if err != nil || !found {
		log.Printf("Error finding currency for assignment notification: %v", err)
		return false
	}

	amount := wk.Helper.FormatAmount(order.Amount, currency.Code)

	_, err = wk.NotificationRepo.Insert(&models.Notification{
		Title:       "New order assignment",
		Description: "You have been assigned to order #" + strconv.FormatInt(order.ID, 10) + " of " + amount,
		UserID:      sql.NullInt64{Int64: orderEvent.MemberID, Valid: true},
		Type:        models.NotificationTypeUser,
	})
	if err != nil {
		log.Printf("Error creating assignment notification: %v", err)
		return false
	}

	return true
}
