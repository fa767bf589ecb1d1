package db

import "errors"

// Backend-neutral failures. Stores translate their native errors into these.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op names the store operation that failed.
type Op string

// Store operations.
const (
	OpCreateIndex Op = "create_index"
	OpDropIndex   Op = "drop_index"
	OpIndexInfo   Op = "index_info"
	OpSearch      Op = "search"
	OpWrite       Op = "write"
	OpGet         Op = "get"
	OpSet         Op = "set"
)

// Error is a backend failure annotated with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string { return "db " + string(e.Op) + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// OpOf returns the operation recorded in err's chain, or "" when err is not a store error.
func OpOf(err error) Op {
	var de *Error
	if errors.As(err, &de) {
		return de.Op
	}
	return ""
}
