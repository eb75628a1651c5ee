package core

import "errors"

// Common errors.
var (
	ErrEmptyID          = errors.New("record id cannot be empty")
	ErrIDConflict       = errors.New("record id already in use")
	ErrParse            = errors.New("payload could not be parsed")
	ErrNoRecords        = errors.New("no valid records found")
	ErrPersistence      = errors.New("snapshot write failed")
	ErrSlotEmpty        = errors.New("slot is empty")
	ErrReadOnly         = errors.New("store is in read-only mode")
	ErrImportInProgress = errors.New("another import is already in progress")
	ErrPlanResolved     = errors.New("import plan already resolved")
)

// ErrorKind is the result kind reported to collaborators.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindEmptyID            ErrorKind = "EmptyId"
	KindIDConflict         ErrorKind = "IdConflict"
	KindParseFailure       ErrorKind = "ParseFailure"
	KindPersistenceFailure ErrorKind = "PersistenceFailure"
	KindOther              ErrorKind = "Other"
)

// Kind classifies err into one of the reported failure kinds.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyID):
		return KindEmptyID
	case errors.Is(err, ErrIDConflict):
		return KindIDConflict
	case errors.Is(err, ErrParse), errors.Is(err, ErrNoRecords):
		return KindParseFailure
	case errors.Is(err, ErrPersistence), errors.Is(err, ErrReadOnly):
		return KindPersistenceFailure
	default:
		return KindOther
	}
}
