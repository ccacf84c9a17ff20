package middleware

import (
	"sync"
)

// MemoryQueue is an in-process NotificationQueue with the same
// at-least-once contract as the RabbitMQ handler: a received message
// that is never deleted shows up again on the next Receive.
type MemoryQueue struct {
	mutex   sync.Mutex
	nextTag uint64
	pending []Message
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		pending: []Message{},
	}
}

func (q *MemoryQueue) Send(body string) (middlewareError MessageMiddlewareError) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.nextTag++
	q.pending = append(q.pending, Message{
		Body:         body,
		DeleteHandle: q.nextTag,
	})
	return MessageMiddlewareSuccess
}

func (q *MemoryQueue) Receive(maxMessages int) (messages []Message, middlewareError MessageMiddlewareError) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	received := []Message{}
	for _, message := range q.pending {
		if len(received) == maxMessages {
			break
		}
		received = append(received, message)
	}
	return received, MessageMiddlewareSuccess
}

func (q *MemoryQueue) Delete(message Message) (middlewareError MessageMiddlewareError) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for i, pending := range q.pending {
		if pending.DeleteHandle == message.DeleteHandle {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return MessageMiddlewareSuccess
		}
	}
	return MessageMiddlewareDeleteError
}

func (q *MemoryQueue) Close() (middlewareError MessageMiddlewareError) {
	return MessageMiddlewareSuccess
}

func (q *MemoryQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.pending)
}
