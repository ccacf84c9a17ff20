package client

import (
	"strings"

	"github.com/google/uuid"
)

type UploadUuid struct {
	Full  string
	Short string
}

const (
	SHORT_UUID_LEN = 8
)

func NewUploadUuid() UploadUuid {
	// UUIDv4 Random based
	newUuid, _ := uuid.NewRandom()
	newUuidStr := newUuid.String()

	return UploadUuid{
		Full:  newUuidStr,
		Short: shortenUuid(newUuidStr),
	}
}

func shortenUuid(longUUID string) string {
	noDashUuid := strings.ReplaceAll(longUUID, "-", "")

	if SHORT_UUID_LEN > len(noDashUuid) {
		return noDashUuid
	}

	return noDashUuid[:SHORT_UUID_LEN]
}
