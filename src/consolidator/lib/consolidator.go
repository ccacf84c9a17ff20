package consolidator

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/op/go-logging"

	"retail-sales-analysis/src/common/logger"
	"retail-sales-analysis/src/common/middleware"
	"retail-sales-analysis/src/common/storage"
)

const (
	SINGLE_ITEM_BUFFER_LEN = 1

	STORE_SUMMARY_SUFFIX   = "summaryByStore.csv"
	PRODUCT_SUMMARY_SUFFIX = "summaryByProduct.csv"
	ANALYSIS_FILE_SUFFIX   = "analysisResults.txt"

	REPORT_OBJECT_FOLDER = "reports/"
)

type ConsolidatorConfig struct {
	BucketName   string
	MaxMessages  int
	OutputFolder string
}

// Consolidator drives the consolidation stage: it drains the
// completion queue downloading every summary object it points at, then
// derives and writes the analysis report for one date.
type Consolidator struct {
	log       *logging.Logger
	conf      ConsolidatorConfig
	store     storage.ObjectStore
	outbox    middleware.NotificationQueue
	sigChan   chan os.Signal
	isRunning bool
}

func NewConsolidator(conf ConsolidatorConfig, store storage.ObjectStore,
	outbox middleware.NotificationQueue,
) *Consolidator {
	log := logger.GetLoggerWithPrefix("[CONSOLIDATOR]")

	sigChan := make(chan os.Signal, SINGLE_ITEM_BUFFER_LEN)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	return &Consolidator{
		log:       log,
		conf:      conf,
		store:     store,
		outbox:    outbox,
		sigChan:   sigChan,
		isRunning: true,
	}
}

// Run drains the completion queue until a receive comes back empty,
// then analyzes the two summaries of the given date and writes the
// report. Summary download failures are reported per file and do not
// block the best-effort report.
func (c *Consolidator) Run(date string) error {
	go c.handleSignal()

	if err := c.drainOutbox(); err != nil {
		return err
	}

	return c.analyzeDate(date)
}

// handleSignal listens for SIGTERM signal and triggers shutdown.
func (c *Consolidator) handleSignal() {
	<-c.sigChan
	c.log.Info("Handling signal")
	c.isRunning = false
}

func (c *Consolidator) drainOutbox() error {
	c.log.Info("Draining completion queue")

	for c.isRunning {
		messages, middleError := c.outbox.Receive(c.conf.MaxMessages)
		if middleError != middleware.MessageMiddlewareSuccess {
			return fmt.Errorf("failed receiving from completion queue: middleware error %d", middleError)
		}
		if len(messages) == 0 {
			return nil
		}

		c.log.Infof("Received %d completion notifications", len(messages))
		processed := 0
		for _, message := range messages {
			discard, err := c.downloadSummary(message)
			if err != nil {
				if discard {
					c.log.Errorf("Discarding undeliverable notification %q: %v", message.Body, err)
					c.deleteMessage(message)
					processed++
				} else {
					c.log.Errorf("Failed downloading summary for %q, leaving it for redelivery: %v", message.Body, err)
				}
				continue
			}
			c.deleteMessage(message)
			processed++
		}

		// A batch where nothing could be processed would be received
		// again unchanged; stop instead of spinning on it.
		if processed == 0 {
			c.log.Warning("No completion notification could be processed, stopping drain")
			return nil
		}
	}

	return nil
}

// downloadSummary fetches the summary a notification points at into
// the output folder. An undecodable notification reports discard=true
// so the caller removes it exactly once instead of letting it poison
// the queue; every other failure leaves the message for redelivery.
func (c *Consolidator) downloadSummary(message middleware.Message) (discard bool, err error) {
	notification, err := middleware.NewNotificationFromBody(message.Body)
	if err != nil {
		return true, err
	}

	data, err := c.store.Get(notification.Bucket, notification.Key)
	if err != nil {
		return false, fmt.Errorf("failed downloading %s/%s: %w", notification.Bucket, notification.Key, err)
	}

	localPath := filepath.Join(c.conf.OutputFolder, notification.FileName())
	if err := os.MkdirAll(c.conf.OutputFolder, 0o755); err != nil {
		return false, fmt.Errorf("failed preparing output folder: %w", err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return false, fmt.Errorf("failed writing %s: %w", localPath, err)
	}

	c.log.Infof("Downloaded summary into %s", localPath)
	return false, nil
}

func (c *Consolidator) deleteMessage(message middleware.Message) {
	if middleError := c.outbox.Delete(message); middleError != middleware.MessageMiddlewareSuccess {
		c.log.Errorf("Failed deleting message %d from completion queue: middleware error %d", message.DeleteHandle, middleError)
	}
}

// analyzeDate builds the report from whatever summaries of the date
// parsed successfully. One unreadable summary does not block the
// other.
func (c *Consolidator) analyzeDate(date string) error {
	c.log.Infof("Analyzing summary data for %s", date)

	report := NewAnalysisReport(date)

	storePath := filepath.Join(c.conf.OutputFolder, date+"-"+STORE_SUMMARY_SUFFIX)
	if data, err := os.ReadFile(storePath); err != nil {
		c.log.Errorf("Store summary unavailable for %s: %v", date, err)
	} else if err := report.AnalyzeStores(data); err != nil {
		c.log.Errorf("Failed analyzing store summary for %s: %v", date, err)
	}

	productPath := filepath.Join(c.conf.OutputFolder, date+"-"+PRODUCT_SUMMARY_SUFFIX)
	if data, err := os.ReadFile(productPath); err != nil {
		c.log.Errorf("Product summary unavailable for %s: %v", date, err)
	} else if err := report.AnalyzeProducts(data); err != nil {
		c.log.Errorf("Failed analyzing product summary for %s: %v", date, err)
	}

	return c.writeReport(report)
}

// writeReport persists the rendered report locally, mirrors it into
// the bucket and echoes the lines to the log. Write failures are
// logged and the remaining outputs still attempted.
func (c *Consolidator) writeReport(report *AnalysisReport) error {
	outputName := report.Date + "-" + ANALYSIS_FILE_SUFFIX
	localPath := filepath.Join(c.conf.OutputFolder, outputName)
	text := report.Format(localPath)

	if err := os.MkdirAll(c.conf.OutputFolder, 0o755); err != nil {
		c.log.Errorf("Failed preparing output folder: %v", err)
	} else if err := os.WriteFile(localPath, []byte(text), 0o644); err != nil {
		c.log.Errorf("Failed writing report to %s: %v", localPath, err)
	} else {
		c.log.Infof("Analysis results written into %s", localPath)
	}

	reportKey := REPORT_OBJECT_FOLDER + outputName
	if err := c.store.Put(c.conf.BucketName, reportKey, []byte(text), true); err != nil {
		c.log.Errorf("Failed uploading report to %s: %v", reportKey, err)
	}

	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		c.log.Info(line)
	}

	return nil
}
