package worker

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"retail-sales-analysis/src/common/logger"
	"retail-sales-analysis/src/common/middleware"
	"retail-sales-analysis/src/common/storage"
)

type IngestWorkerConfig struct {
	BucketName   string
	MaxMessages  int
	PollInterval time.Duration
	// RunOnce makes the worker drain a single batch and exit, for
	// invocation-triggered deployments.
	RunOnce bool
}

// IngestWorker drives the ingest stage: it drains sales notifications,
// merges each referenced sales file into its date aggregate, persists
// both summary objects and then publishes completion notifications.
type IngestWorker struct {
	log        *logging.Logger
	conf       IngestWorkerConfig
	store      storage.ObjectStore
	inbox      middleware.NotificationQueue
	outbox     middleware.NotificationQueue
	aggregates *AggregateStore
	sigChan    chan os.Signal
	isRunning  bool
	id         string
}

func NewIngestWorker(conf IngestWorkerConfig, store storage.ObjectStore,
	inbox, outbox middleware.NotificationQueue,
) *IngestWorker {
	log := logger.GetLoggerWithPrefix("[WORKER]")

	sigChan := make(chan os.Signal, SINGLE_ITEM_BUFFER_LEN)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	return &IngestWorker{
		log:        log,
		conf:       conf,
		store:      store,
		inbox:      inbox,
		outbox:     outbox,
		aggregates: NewAggregateStore(),
		sigChan:    sigChan,
		isRunning:  true,
		id:         uuid.NewString(),
	}
}

// handleSignal listens for SIGTERM signal and triggers shutdown.
func (w *IngestWorker) handleSignal() {
	<-w.sigChan
	w.log.Info("Handling signal")
	w.Shutdown()
}

func (w *IngestWorker) Shutdown() {
	w.isRunning = false
}

// Run polls the ingest queue until shutdown, or processes a single
// drained batch in run-once mode. A queue service failure is fatal.
func (w *IngestWorker) Run() error {
	go w.handleSignal()

	w.log.Infof("Worker %s listening ingest queue for messages every %s", w.id, w.conf.PollInterval)
	for w.isRunning {
		drained, err := w.drainInbox()
		if err != nil {
			return err
		}
		if w.conf.RunOnce {
			return nil
		}
		if drained == 0 {
			w.log.Debugf("No pending sales notifications")
		}
		time.Sleep(w.conf.PollInterval)
	}

	w.log.Info("Worker stopped")
	return nil
}

// drainInbox receives one batch of pending sales notifications,
// processes each and afterwards publishes one completion notification
// per updated summary object.
func (w *IngestWorker) drainInbox() (int, error) {
	messages, middleError := w.inbox.Receive(w.conf.MaxMessages)
	if middleError != middleware.MessageMiddlewareSuccess {
		return 0, fmt.Errorf("failed receiving from ingest queue: middleware error %d", middleError)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	w.log.Infof("Received %d sales notifications", len(messages))

	updatedKeys := []string{}
	notified := make(map[string]bool)
	for _, message := range messages {
		keys, discard, err := w.processIngest(message)
		if err != nil {
			if discard {
				w.log.Errorf("Discarding undeliverable notification %q: %v", message.Body, err)
				w.deleteMessage(message)
			} else {
				w.log.Errorf("Failed processing notification %q, leaving it for redelivery: %v", message.Body, err)
			}
			continue
		}

		// Delete only after the summaries were persisted, so a crash
		// before this point redelivers the notification.
		w.deleteMessage(message)

		for _, key := range keys {
			if !notified[key] {
				notified[key] = true
				updatedKeys = append(updatedKeys, key)
			}
		}
	}

	if len(updatedKeys) > 0 {
		w.log.Info("Notifying completion queue")
	}
	for _, key := range updatedKeys {
		notification := middleware.NewNotification(w.conf.BucketName, key)
		if middleError := w.outbox.Send(notification.Body()); middleError != middleware.MessageMiddlewareSuccess {
			w.log.Errorf("Failed publishing completion notification for %s: middleware error %d", key, middleError)
		}
	}

	return len(messages), nil
}

// processIngest handles one sales notification: download, parse, merge
// and persist. It returns the summary object keys it updated. An
// undecodable notification reports discard=true so the caller removes
// it instead of letting it poison the queue; every other failure
// leaves the message for redelivery.
func (w *IngestWorker) processIngest(message middleware.Message) (updatedKeys []string, discard bool, err error) {
	notification, err := middleware.NewNotificationFromBody(message.Body)
	if err != nil {
		return nil, true, err
	}

	date, err := middleware.ExtractDate(notification.FileName())
	if err != nil {
		return nil, true, err
	}

	w.log.Infof("Processing sales file %s/%s for date %s", notification.Bucket, notification.Key, date)

	data, err := w.store.Get(notification.Bucket, notification.Key)
	if err != nil {
		return nil, false, fmt.Errorf("failed downloading sales object: %w", err)
	}

	batch, err := ParseSales(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed parsing sales batch: %w", err)
	}

	aggregate := w.aggregateFor(date)
	aggregate.Merge(batch)

	storeKey := StoreSummaryKey(date)
	productKey := ProductSummaryKey(date)
	if err := w.store.Put(w.conf.BucketName, storeKey, aggregate.Stores.Serialize(), true); err != nil {
		return nil, false, fmt.Errorf("failed persisting store summary: %w", err)
	}
	if err := w.store.Put(w.conf.BucketName, productKey, aggregate.Products.Serialize(), true); err != nil {
		return nil, false, fmt.Errorf("failed persisting product summary: %w", err)
	}

	w.log.Infof("Merged %d sales into aggregate for %s: %d stores, %d products",
		len(batch), date, aggregate.Stores.Len(), aggregate.Products.Len())
	return []string{storeKey, productKey}, false, nil
}

func (w *IngestWorker) deleteMessage(message middleware.Message) {
	if middleError := w.inbox.Delete(message); middleError != middleware.MessageMiddlewareSuccess {
		w.log.Errorf("Failed deleting message %d from ingest queue: middleware error %d", message.DeleteHandle, middleError)
	}
}

// aggregateFor returns the running aggregate for a date, hydrating it
// from the persisted summaries on first sight so that totals keep
// growing across worker restarts. The merge against the last-read
// snapshot is not atomic: two workers racing on the same date can lose
// one update (last writer wins on the summary object).
func (w *IngestWorker) aggregateFor(date string) *DateAggregate {
	if aggregate, exists := w.aggregates.Get(date); exists {
		return aggregate
	}

	aggregate := NewDateAggregate(date)

	data, err := w.store.Get(w.conf.BucketName, StoreSummaryKey(date))
	if err == nil {
		aggregate.Stores = DeserializeStoreTotals(data)
	} else if !errors.Is(err, storage.ErrObjectNotFound) {
		w.log.Errorf("Failed reading prior store summary for %s, starting from zero totals: %v", date, err)
	}

	data, err = w.store.Get(w.conf.BucketName, ProductSummaryKey(date))
	if err == nil {
		products, parseErr := DeserializeProductTotals(data)
		if parseErr != nil {
			w.log.Errorf("Failed parsing prior product summary for %s, starting from zero totals: %v", date, parseErr)
		} else {
			aggregate.Products = products
		}
	} else if !errors.Is(err, storage.ErrObjectNotFound) {
		w.log.Errorf("Failed reading prior product summary for %s, starting from zero totals: %v", date, err)
	}

	w.aggregates.Put(aggregate)
	return aggregate
}
