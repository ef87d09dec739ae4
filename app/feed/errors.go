package feed

import (
	"fmt"
)

// FetchError reports a network or transport failure for a single source URL.
// It is distinct from ParseError so failure statistics can be attributed to
// the right stage.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed feed document. A malformed individual entry
// inside a well-formed document is skipped instead, never surfaced as a
// ParseError.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MergeError reports a record store write failure for one item. It carries
// the external key so the offending record can be identified in logs.
type MergeError struct {
	Kind        ContentKind
	ExternalKey string
	Err         error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %s %s: %v", e.Kind, e.ExternalKey, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
