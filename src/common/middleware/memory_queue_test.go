package middleware_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"retail-sales-analysis/src/common/middleware"
)

func TestMemoryQueueSendReceive(t *testing.T) {
	queue := middleware.NewMemoryQueue()
	require.Equal(t, middleware.MessageMiddlewareSuccess, queue.Send("first"))
	require.Equal(t, middleware.MessageMiddlewareSuccess, queue.Send("second"))

	messages, middleError := queue.Receive(10)
	require.Equal(t, middleware.MessageMiddlewareSuccess, middleError)
	require.Len(t, messages, 2)
	require.Equal(t, "first", messages[0].Body)
	require.Equal(t, "second", messages[1].Body)
}

func TestMemoryQueueReceiveHonorsMaxMessages(t *testing.T) {
	queue := middleware.NewMemoryQueue()
	queue.Send("first")
	queue.Send("second")
	queue.Send("third")

	messages, _ := queue.Receive(2)
	require.Len(t, messages, 2)
}

func TestMemoryQueueRedeliversUndeletedMessages(t *testing.T) {
	queue := middleware.NewMemoryQueue()
	queue.Send("only")

	first, _ := queue.Receive(10)
	require.Len(t, first, 1)

	// Not deleted, so the message must show up again.
	second, _ := queue.Receive(10)
	require.Len(t, second, 1)
	require.Equal(t, "only", second[0].Body)
}

func TestMemoryQueueDeleteRemovesMessage(t *testing.T) {
	queue := middleware.NewMemoryQueue()
	queue.Send("only")

	messages, _ := queue.Receive(10)
	require.Len(t, messages, 1)
	require.Equal(t, middleware.MessageMiddlewareSuccess, queue.Delete(messages[0]))

	remaining, _ := queue.Receive(10)
	require.Empty(t, remaining)
	require.Equal(t, middleware.MessageMiddlewareDeleteError, queue.Delete(messages[0]),
		"Expected deleting an already deleted message to fail")
}
