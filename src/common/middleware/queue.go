package middleware

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"retail-sales-analysis/src/common/logger"
)

var queue_logger = logger.GetLoggerWithPrefix("[SQ]")

type MessageMiddlewareQueue struct {
	queueName string
	channel   MiddlewareChannel
}

func NewMessageMiddlewareQueue(queueName string, channel MiddlewareChannel) *MessageMiddlewareQueue {
	return &MessageMiddlewareQueue{
		queueName: queueName,
		channel:   channel,
	}
}

// QueueExists checks the queue with a passive declare. The probe uses a
// throwaway channel because a failed passive declare closes it.
func QueueExists(rabbitConn *RabbitConnection, queueName string) bool {
	ch, err := rabbitConn.CreateNewChannel()
	if err != nil {
		return false
	}
	defer ch.Close()

	_, err = ch.QueueDeclarePassive(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	return err == nil
}

func (m *MessageMiddlewareQueue) Declare() error {
	_, err := m.channel.QueueDeclare(
		m.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	return err
}

func (m *MessageMiddlewareQueue) Send(body string) (middlewareError MessageMiddlewareError) {
	err := m.channel.Publish(
		"",          // exchange
		m.queueName, // routing key (queue name)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Persistent,
			Body:         []byte(body),
		},
	)

	if err != nil {
		queue_logger.Errorf("failed to publish to %s: %v", m.queueName, err)
		return MessageMiddlewareMessageError
	}

	return MessageMiddlewareSuccess
}

// Receive pulls up to maxMessages with basic.get and no auto-ack, so a
// message stays pending until Delete acknowledges it.
func (m *MessageMiddlewareQueue) Receive(maxMessages int) (messages []Message, middlewareError MessageMiddlewareError) {
	received := []Message{}

	for i := 0; i < maxMessages; i++ {
		delivery, pending, err := m.channel.Get(m.queueName, false)
		if err != nil {
			queue_logger.Errorf("failed to receive from %s: %v", m.queueName, err)
			return nil, MessageMiddlewareDisconnectedError
		}
		if !pending {
			break
		}
		received = append(received, Message{
			Body:         string(delivery.Body),
			DeleteHandle: delivery.DeliveryTag,
		})
	}

	return received, MessageMiddlewareSuccess
}

func (m *MessageMiddlewareQueue) Delete(message Message) (middlewareError MessageMiddlewareError) {
	err := m.channel.Ack(message.DeleteHandle, false)
	if err != nil {
		queue_logger.Errorf("failed to delete message %d from %s: %v", message.DeleteHandle, m.queueName, err)
		return MessageMiddlewareDeleteError
	}

	return MessageMiddlewareSuccess
}

func (m *MessageMiddlewareQueue) Close() (middlewareError MessageMiddlewareError) {
	err := m.channel.Close()
	if err != nil {
		return MessageMiddlewareCloseError
	}

	return MessageMiddlewareSuccess
}
