package articles

import (
	"errors"
	"fmt"
)

// errNoStorage surfaces when an image upload is required but no object
// storage is configured.
var errNoStorage = errors.New("no object storage configured")

// ErrSessionInvalid is returned when a create is attempted without an
// authenticated author. The client sends the reader back to the login page.
var ErrSessionInvalid = errors.New("session invalid: sign in again")

// ValidationError rejects a save before anything is written. Field names one
// of the draft's inputs: title, date, slug, or blocks.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError wraps a blob store failure during upload or cascade delete.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DatastoreError wraps a database failure from any save or delete phase.
type DatastoreError struct {
	Op  string
	Err error
}

func (e *DatastoreError) Error() string {
	return fmt.Sprintf("datastore %s: %v", e.Op, e.Err)
}

func (e *DatastoreError) Unwrap() error { return e.Err }
