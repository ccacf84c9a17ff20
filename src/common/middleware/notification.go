package middleware

import (
	"fmt"
	"strings"
	"time"
)

const (
	NOTIFICATION_SEPARATOR = ":"
	OBJECT_KEY_SEPARATOR   = "/"

	// File names embed the calendar date as their first 10 characters
	DATE_FORMAT = "02-01-2006"
	DATE_LEN    = 10
)

// Notification points a pipeline stage at one object in the store. The
// body is the plain "{bucket}:{objectKey}" encoding shared with every
// other process reading these queues, so it must stay byte-compatible.
type Notification struct {
	Bucket string
	Key    string
}

func NewNotification(bucket, key string) *Notification {
	return &Notification{
		Bucket: bucket,
		Key:    key,
	}
}

func NewNotificationFromBody(body string) (*Notification, error) {
	parts := strings.SplitN(body, NOTIFICATION_SEPARATOR, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("malformed notification body: %q", body)
	}

	return &Notification{
		Bucket: parts[0],
		Key:    parts[1],
	}, nil
}

func (n *Notification) Body() string {
	return n.Bucket + NOTIFICATION_SEPARATOR + n.Key
}

// FileName returns the last segment of the object key.
func (n *Notification) FileName() string {
	segments := strings.Split(n.Key, OBJECT_KEY_SEPARATOR)
	return segments[len(segments)-1]
}

// ExtractDate parses the DD-MM-YYYY prefix that identifies which date
// aggregate a file belongs to.
func ExtractDate(fileName string) (string, error) {
	if len(fileName) < DATE_LEN {
		return "", fmt.Errorf("file name %q too short to carry a date prefix", fileName)
	}

	date := fileName[:DATE_LEN]
	if _, err := time.Parse(DATE_FORMAT, date); err != nil {
		return "", fmt.Errorf("file name %q has no valid date prefix: %w", fileName, err)
	}

	return date, nil
}
