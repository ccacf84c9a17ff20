package client

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/op/go-logging"

	"retail-sales-analysis/src/common/logger"
	"retail-sales-analysis/src/common/middleware"
	"retail-sales-analysis/src/common/storage"
)

const (
	SALES_OBJECT_FOLDER = "data/"
)

type ClientConfig struct {
	BucketName string
}

// Client is the producer: it uploads a local daily sales file into the
// bucket and notifies the ingest queue.
type Client struct {
	log   *logging.Logger
	conf  ClientConfig
	store storage.ObjectStore
	inbox middleware.NotificationQueue
}

func NewClient(conf ClientConfig, store storage.ObjectStore, inbox middleware.NotificationQueue) *Client {
	return &Client{
		log:   logger.GetLoggerWithPrefix("[CLIENT]"),
		conf:  conf,
		store: store,
		inbox: inbox,
	}
}

// Run uploads the sales file at localPath and publishes its ingest
// notification. The upload refuses to overwrite an already ingested
// file: re-notifying the same object would double-count its sales.
func (c *Client) Run(localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed reading local file %s: %w", localPath, err)
	}

	uploadId := NewUploadUuid()
	c.log.Infof("Found local file %s, starting upload %s", localPath, uploadId.Short)

	if err := c.ensureBucket(); err != nil {
		return err
	}

	key := SALES_OBJECT_FOLDER + filepath.Base(localPath)
	if err := c.store.Put(c.conf.BucketName, key, data, false); err != nil {
		return fmt.Errorf("failed uploading sales file to %s/%s: %w", c.conf.BucketName, key, err)
	}
	c.log.Infof("Upload %s done: %s/%s (%d bytes)", uploadId.Short, c.conf.BucketName, key, len(data))

	notification := middleware.NewNotification(c.conf.BucketName, key)
	if middleError := c.inbox.Send(notification.Body()); middleError != middleware.MessageMiddlewareSuccess {
		return fmt.Errorf("failed notifying ingest queue: middleware error %d", middleError)
	}
	c.log.Info("Notified ingest queue")

	return nil
}

func (c *Client) ensureBucket() error {
	exists, err := c.store.BucketExists(c.conf.BucketName)
	if err != nil {
		return fmt.Errorf("failed checking bucket %s: %w", c.conf.BucketName, err)
	}
	if !exists {
		if err := c.store.CreateBucket(c.conf.BucketName); err != nil {
			return err
		}
	}
	return nil
}
