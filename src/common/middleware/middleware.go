package middleware

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

type MiddlewareChannel = *amqp.Channel

type MessageMiddlewareError int

const (
	MessageMiddlewareSuccess MessageMiddlewareError = iota
	MessageMiddlewareMessageError
	MessageMiddlewareDisconnectedError
	MessageMiddlewareCloseError
	MessageMiddlewareDeleteError
)

// Message is one pending queue entry. DeleteHandle identifies the
// delivery so it can be removed once processing succeeded; an
// unreleased message is redelivered on a later Receive.
type Message struct {
	Body         string
	DeleteHandle uint64
}

// NotificationQueue is the durable queue boundary of the pipeline:
// at-least-once delivery, explicit per-message deletion.
type NotificationQueue interface {
	/*
	   Publishes a message body to the queue.
	   Returns MessageMiddlewareDisconnectedError if the connection to the
	   middleware is lost, MessageMiddlewareMessageError on an internal
	   error that cannot be resolved.
	*/
	Send(body string) (middlewareError MessageMiddlewareError)

	/*
	   Pulls up to maxMessages pending messages without removing them.
	   An empty slice means the queue is currently drained.
	*/
	Receive(maxMessages int) (messages []Message, middlewareError MessageMiddlewareError)

	/*
	   Removes a previously received message. Until Delete is called the
	   message stays eligible for redelivery.
	*/
	Delete(message Message) (middlewareError MessageMiddlewareError)

	/*
	   Disconnects from the queue.
	   Returns MessageMiddlewareCloseError on an internal error that cannot
	   be resolved.
	*/
	Close() (middlewareError MessageMiddlewareError)
}
