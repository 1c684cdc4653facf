package token

import (
	"fmt"

	"trackit/internal/pkg/errs"
)

// Class distinguishes the two credential kinds an order can carry.
type Class int

const (
	// Unknown is a tag this service does not issue.
	Unknown Class = iota

	// Package authorizes the three custody scans (vendor to carrier legs).
	Package

	// Recipient authorizes the final carrier to customer handoff.
	Recipient
)

const (
	packageTag   = "PACKAGE"
	recipientTag = "CUSTOMERDELIVERY"
)

// String returns the persisted code of the class.
func (c Class) String() string {
	switch c {
	case Package:
		return "package"
	case Recipient:
		return "recipient"
	default:
		return "unknown"
	}
}

// Validate rejects Unknown and out of range values.
func (c Class) Validate() error {
	if c != Package && c != Recipient {
		return errs.NewValueIsInvalidErrorWithCause("token class", fmt.Errorf("%d is not a valid class", c))
	}
	return nil
}

// ParseClass maps a persisted code back to a Class.
func ParseClass(code string) (Class, error) {
	switch code {
	case "package":
		return Package, nil
	case "recipient":
		return Recipient, nil
	default:
		return Unknown, errs.NewValueIsInvalidErrorWithCause("token class", fmt.Errorf("%q is not a valid class", code))
	}
}

func (c Class) tag() string {
	switch c {
	case Package:
		return packageTag
	case Recipient:
		return recipientTag
	default:
		return ""
	}
}
