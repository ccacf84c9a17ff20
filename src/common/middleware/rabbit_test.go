package middleware

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

var (
	rabbitContainer testcontainers.Container
	containerOnce   sync.Once
	containerHost   string
	containerPort   int
	containerErr    error
)

func setupRabbitContainer(t *testing.T) (host string, port int) {
	if testing.Short() {
		t.Skip("skipping RabbitMQ integration test in short mode")
	}

	containerOnce.Do(func() {
		ctx := context.Background()

		rabbitContainer, containerErr = rabbitmq.Run(ctx,
			"rabbitmq:4.1.4-management",
			rabbitmq.WithAdminUsername("user"),
			rabbitmq.WithAdminPassword("password"),
			testcontainers.WithEnv(map[string]string{
				"RABBITMQ_DEFAULT_USER": "user",
				"RABBITMQ_DEFAULT_PASS": "password",
			}),
		)
		if containerErr != nil {
			return
		}

		containerHost, containerErr = rabbitContainer.Host(ctx)
		if containerErr != nil {
			return
		}

		mappedPort, err := rabbitContainer.MappedPort(ctx, "5672")
		if err != nil {
			containerErr = err
			return
		}
		containerPort = mappedPort.Int()
	})

	if containerErr != nil {
		t.Fatal(containerErr)
	}

	return containerHost, containerPort
}

func TestMain(m *testing.M) {
	// Setup is done in setupRabbitContainer via sync.Once
	code := m.Run()
	// Cleanup
	if rabbitContainer != nil {
		ctx := context.Background()
		rabbitContainer.Terminate(ctx)
	}
	os.Exit(code)
}

func newTestConnection(t *testing.T) *RabbitConnection {
	host, port := setupRabbitContainer(t)

	conf := NewRabbitConfig("user", "password", host, port)
	conn, err := NewRabbitConnection(&conf)
	if err != nil {
		t.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestRabbitConnection(t *testing.T) {
	conn := newTestConnection(t)

	ch, err := conn.CreateNewChannel()
	if err != nil {
		t.Fatalf("failed to create channel: %v", err)
	}
	ch.Close()
}

func TestQueueExistsAfterDeclare(t *testing.T) {
	conn := newTestConnection(t)

	queueName := "test-queue-exists"
	if QueueExists(conn, queueName) {
		t.Fatalf("queue %s should not exist yet", queueName)
	}

	ch, err := conn.CreateNewChannel()
	if err != nil {
		t.Fatalf("failed to create channel: %v", err)
	}
	queue := NewMessageMiddlewareQueue(queueName, ch)
	if err := queue.Declare(); err != nil {
		t.Fatalf("failed to declare queue: %v", err)
	}

	if !QueueExists(conn, queueName) {
		t.Fatalf("queue %s should exist after declare", queueName)
	}
}

func TestQueueSendReceiveDelete(t *testing.T) {
	conn := newTestConnection(t)

	ch, err := conn.CreateNewChannel()
	if err != nil {
		t.Fatalf("failed to create channel: %v", err)
	}
	queue := NewMessageMiddlewareQueue("test-queue-roundtrip", ch)
	if err := queue.Declare(); err != nil {
		t.Fatalf("failed to declare queue: %v", err)
	}

	body := "retail-sales:data/10-01-2024-store1.csv"
	if middleError := queue.Send(body); middleError != MessageMiddlewareSuccess {
		t.Fatalf("failed to send message: middleware error %d", middleError)
	}

	messages, middleError := queue.Receive(10)
	if middleError != MessageMiddlewareSuccess {
		t.Fatalf("failed to receive messages: middleware error %d", middleError)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Body != body {
		t.Fatalf("expected body %q, got %q", body, messages[0].Body)
	}

	if middleError := queue.Delete(messages[0]); middleError != MessageMiddlewareSuccess {
		t.Fatalf("failed to delete message: middleware error %d", middleError)
	}

	remaining, middleError := queue.Receive(10)
	if middleError != MessageMiddlewareSuccess {
		t.Fatalf("failed to receive messages: middleware error %d", middleError)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected the queue to be drained, got %d messages", len(remaining))
	}
}
