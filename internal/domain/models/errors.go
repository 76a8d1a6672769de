package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord indicates a record could not be parsed into a vehicle.
	ErrInvalidRecord = errors.New("invalid vehicle record")
	// ErrDuplicateVIN indicates the inventory already holds a vehicle with the same VIN.
	ErrDuplicateVIN = errors.New("duplicate vin")
	// ErrStoreUnavailable indicates the backing store could not be read or written.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrVehicleNotFound indicates no vehicle matches the requested VIN.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrInvalidContract indicates deal terms are incomplete or unknown.
	ErrInvalidContract = errors.New("invalid contract")
)

// FormatError reports a record that does not parse into the vehicle fields.
type FormatError struct {
	Record string
	Msg    string
}

func (e *FormatError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %q", ErrInvalidRecord, e.Record)
	}
	return fmt.Sprintf("%s: %s: %q", ErrInvalidRecord, e.Msg, e.Record)
}

func (e *FormatError) Unwrap() error { return ErrInvalidRecord }

// DuplicateKeyError reports a VIN collision on add.
type DuplicateKeyError struct {
	VIN int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: vehicle with vin %d already exists", ErrDuplicateVIN, e.VIN)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateVIN }

// StoreUnavailableError wraps an I/O or connection failure of a backend.
type StoreUnavailableError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrStoreUnavailable, e.Backend, e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *StoreUnavailableError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

func formatErrorf(record, format string, args ...any) error {
	return &FormatError{Record: record, Msg: fmt.Sprintf(format, args...)}
}
