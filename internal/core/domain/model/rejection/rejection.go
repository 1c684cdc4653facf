// Package rejection defines the closed set of outcomes that can end a scan,
// accept or reject request without a state change.
//
// Every failure crossing the scan boundary is an *Error carrying exactly one
// Kind. Callers switch over KindOf(err) exhaustively or test a single kind
// with errors.Is(err, rejection.ErrWrongToken).
package rejection

import (
	"errors"
	"fmt"
)

// Kind enumerates the rejection reasons. The zero value is not a valid kind.
type Kind int

const (
	Unknown Kind = iota
	MalformedToken
	OrderNotFound
	UnknownTokenClass
	WrongToken
	Unauthorized
	AlreadyMaxScanned
	NotReadyForDelivery
	InvalidTransition
	StoreUnavailable
	ScanConflict
)

var (
	ErrMalformedToken      = errors.New("malformed token")
	ErrOrderNotFound       = errors.New("order not found")
	ErrUnknownTokenClass   = errors.New("unknown token class")
	ErrWrongToken          = errors.New("wrong token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAlreadyMaxScanned   = errors.New("already max scanned")
	ErrNotReadyForDelivery = errors.New("not ready for delivery")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrScanConflict        = errors.New("scan conflict")
)

type kindInfo struct {
	name     string
	sentinel error
	message  string
}

func kindInfos() map[Kind]kindInfo {
	return map[Kind]kindInfo{
		MalformedToken:      {"MalformedToken", ErrMalformedToken, "Invalid QR code format."},
		OrderNotFound:       {"OrderNotFound", ErrOrderNotFound, "Order not found."},
		UnknownTokenClass:   {"UnknownTokenClass", ErrUnknownTokenClass, "Unknown QR type."},
		WrongToken:          {"WrongToken", ErrWrongToken, "Wrong QR code for this order."},
		Unauthorized:        {"Unauthorized", ErrUnauthorized, "Unauthorized scan."},
		AlreadyMaxScanned:   {"AlreadyMaxScanned", ErrAlreadyMaxScanned, "Package QR already scanned maximum times."},
		NotReadyForDelivery: {"NotReadyForDelivery", ErrNotReadyForDelivery, "Order not ready for final delivery."},
		InvalidTransition:   {"InvalidTransition", ErrInvalidTransition, "Order cannot change to the requested state."},
		StoreUnavailable:    {"StoreUnavailable", ErrStoreUnavailable, "Order store is unavailable, try again."},
		ScanConflict:        {"ScanConflict", ErrScanConflict, "Order was changed by a concurrent request."},
	}
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		MalformedToken,
		OrderNotFound,
		UnknownTokenClass,
		WrongToken,
		Unauthorized,
		AlreadyMaxScanned,
		NotReadyForDelivery,
		InvalidTransition,
		StoreUnavailable,
		ScanConflict,
	}
}

// String returns the kind name used in API payloads and metrics labels.
func (k Kind) String() string {
	if info, ok := kindInfos()[k]; ok {
		return info.name
	}
	return "Unknown"
}

// Message is the text a scanning client shows to its user.
func (k Kind) Message() string {
	if info, ok := kindInfos()[k]; ok {
		return info.message
	}
	return "Unexpected error."
}

func (k Kind) sentinel() error {
	if info, ok := kindInfos()[k]; ok {
		return info.sentinel
	}
	return nil
}

// Error is a rejection of one kind, with an optional detail and cause.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

// New builds a rejection with a human readable detail.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Newf is New with fmt formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap builds a rejection caused by a lower level error.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// KindOf extracts the kind of err, or Unknown when err is not a rejection.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var rejErr *Error
	if errors.As(err, &rejErr) {
		return rejErr.Kind
	}
	for _, k := range Kinds() {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}
	return Unknown
}

// Is reports whether err is a rejection of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
