package service

import (
	"context"
	"encoding/json"

	"healthlink-be/internal/dto"
	"healthlink-be/internal/pkg/logger"
	"healthlink-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Delivery pushes a serialized frame to a user's live connection and reports
// whether a local push happened. Implemented by the websocket hub.
type Delivery interface {
	Send(userID uuid.UUID, payload []byte) bool
}

type IDeliveryService interface {
	Consume(ctx context.Context) error
}

type deliveryService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  Delivery
	logger    logger.ILogger
}

func NewDeliveryService(pubSub *gochannel.GoChannel, topicName string, delivery Delivery, log logger.ILogger) IDeliveryService {
	return &deliveryService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		logger:    log,
	}
}

// Consume subscribes to the delivery topic and forwards committed messages to
// the receiver's live connection. Events arrive only after the durable write,
// so failures here never affect the send's outcome.
func (ds *deliveryService) Consume(ctx context.Context) error {
	messages, err := ds.pubSub.Subscribe(ctx, ds.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ds.processMessage(msg)
		}
	}()

	return nil
}

func (ds *deliveryService) processMessage(msg *message.Message) {
	var event dto.MessageCreatedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		ds.logger.Warn("DeliveryService", "Failed to unmarshal delivery event", map[string]interface{}{"error": err.Error()})
		// Ack malformed events to prevent infinite retry.
		msg.Ack()
		return
	}

	data, err := json.Marshal(event.Message)
	if err != nil {
		msg.Ack()
		return
	}
	frame, _ := json.Marshal(websocket.Frame{Type: websocket.FrameTypeMessage, Data: data})

	if !ds.delivery.Send(event.ReceiverId, frame) {
		// Offline receivers catch up over the REST history endpoint.
		ds.logger.Info("DeliveryService", "Receiver offline, push skipped", map[string]interface{}{"receiver_id": event.ReceiverId, "message_id": event.Message.Id})
	}

	msg.Ack()
}
