package models

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy shared by services and handlers. Handlers map these
// onto HTTP statuses in one place.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInternal         = errors.New("internal error")
)

// AlreadyScannedError rejects a second admission attempt. It carries
// the original scan time so door staff can resolve disputes on the
// spot.
type AlreadyScannedError struct {
	ScannedAt *time.Time
}

func (e *AlreadyScannedError) Error() string {
	if e.ScannedAt != nil {
		return fmt.Sprintf("ticket already scanned at %s", e.ScannedAt.UTC().Format(time.RFC3339))
	}
	return "ticket already scanned"
}
