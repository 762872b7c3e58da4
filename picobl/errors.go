package picobl

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrImageTooLarge - Délka se nevejde do 32bitového pole hlavičky
	ErrImageTooLarge = errors.New("image does not fit in 32 bits")

	// ErrEmptyPayload - Není co nahrát
	ErrEmptyPayload = errors.New("empty payload")
)

// PortOpenError - Sériový port nelze otevřít
type PortOpenError struct {
	Port string
	Err  error
}

func (e *PortOpenError) Error() string {
	return fmt.Sprintf("failed to open port %s: %v", e.Port, e.Err)
}

func (e *PortOpenError) Unwrap() error {
	return e.Err
}

// IoError - Zápis, vyprázdnění nebo zahození vstupu na spojení selhalo
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// StateError - Nahrávání skončilo chybou v daném stavu
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("upload aborted in state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
