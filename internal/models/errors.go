// Package models defines typed errors for better error handling and context.
package models

import "fmt"

// NetworkError represents a connection or timeout failure on an HTTP GET.
// It is the only error class the document fetcher retries.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for URL %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// EmptyResponseError represents a successful HTTP call with a blank body.
// Treated like a parse failure: the strategy fails, nothing is retried.
type EmptyResponseError struct {
	URL string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("empty response body for URL %s", e.URL)
}

// ParseError represents a malformed or unexpected document/workbook shape.
type ParseError struct {
	Step string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed at %s: %v", e.Step, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
