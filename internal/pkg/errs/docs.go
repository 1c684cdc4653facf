// Package errs provides the generic error types shared across the service.
//
// Every type follows the same shape: a sentinel (ErrValueIsRequired, ...), a
// struct carrying the details, constructors with and without a cause, and an
// Unwrap that returns the sentinel so callers can use errors.Is.
//
// Domain specific scan outcomes live in the rejection package; errs covers
// construction and persistence failures.
package errs
