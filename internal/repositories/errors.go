package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrCreateFailed wraps storage failures while persisting notifications.
	ErrCreateFailed = errors.New("create failed")
	// ErrInvalidSort is returned for sort fields or directions outside the whitelist.
	ErrInvalidSort = errors.New("invalid sort")
)

// notFound maps gorm's record-not-found onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
