// Package token builds and parses the QR payloads that gate order transitions.
//
// Layouts (fields separated by "_"):
//
//	TRACKIT_PACKAGE_<orderID>_<yyyymmddHHMMSS>_<hex>
//	TRACKIT_CUSTOMERDELIVERY_<orderID>_<customerID>_<yyyymmddHHMMSS>_<hex>
//	TRACKIT_CUSTOMER_DELIVERY_<orderID>_<customerID>_<yyyymmddHHMMSS>_<hex>   (legacy)
//
// Parsing goes by field count and position, never by total length, so older
// codes with shorter random suffixes keep scanning.
package token

import (
	"strings"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/rejection"
)

const (
	// Namespace prefixes every token issued by this service.
	Namespace = "TRACKIT"

	// TimestampLayout is the issue time format embedded in tokens (UTC).
	TimestampLayout = "20060102150405"

	separator = "_"
)

// Token is a parsed or freshly generated credential. It is a value object;
// the raw string is what orders store and compare.
type Token struct {
	class      Class
	tag        string
	orderID    kernel.UUID
	customerID *kernel.UUID
	issuedAt   time.Time
	nonce      string
	raw        string
}

// Class returns the token class. Unknown for tags the service does not issue.
func (t Token) Class() Class {
	return t.class
}

// Tag returns the raw class tag as it appeared in the payload.
func (t Token) Tag() string {
	return t.tag
}

// OrderID returns the order the token was issued for.
func (t Token) OrderID() kernel.UUID {
	return t.orderID
}

// CustomerID returns the customer of a recipient token, nil otherwise.
func (t Token) CustomerID() *kernel.UUID {
	return t.customerID
}

// IssuedAt returns the embedded issue time. Tokens never expire; this is for audit only.
func (t Token) IssuedAt() time.Time {
	return t.issuedAt
}

// Raw returns the payload exactly as scanned, or the canonical form for
// generated tokens. Orders store and compare this value.
func (t Token) Raw() string {
	if t.raw != "" {
		return t.raw
	}
	return t.String()
}

// String renders the canonical payload.
func (t Token) String() string {
	fields := []string{Namespace, t.tag, t.orderID.String()}
	if t.customerID != nil {
		fields = append(fields, t.customerID.String())
	}
	fields = append(fields, t.issuedAt.UTC().Format(TimestampLayout), t.nonce)
	return strings.Join(fields, separator)
}

// Parse decodes a scanned payload. Failures are rejection.MalformedToken.
// An unrecognized class tag is not a parse failure: the token comes back with
// Class Unknown and the order id read from the third field, leaving the class
// decision to the scan validator.
func Parse(raw string) (Token, error) {
	if !strings.HasPrefix(raw, Namespace+separator) {
		return Token{}, rejection.New(rejection.MalformedToken, "missing namespace prefix")
	}

	parts := strings.Split(raw, separator)
	if len(parts) < 3 {
		return Token{}, rejection.Newf(rejection.MalformedToken, "expected at least 3 fields, got %d", len(parts))
	}

	var (
		t   Token
		err error
	)
	switch {
	case parts[1] == packageTag:
		t, err = parseFields(Package, packageTag, parts[2:], 3)
	case parts[1] == recipientTag:
		t, err = parseFields(Recipient, recipientTag, parts[2:], 4)
	case parts[1] == "CUSTOMER" && parts[2] == "DELIVERY":
		t, err = parseFields(Recipient, recipientTag, parts[3:], 4)
	default:
		orderID, idErr := kernel.UUIDFromString(parts[2])
		if idErr != nil {
			return Token{}, rejection.Wrap(rejection.MalformedToken, idErr)
		}
		t = Token{class: Unknown, tag: parts[1], orderID: orderID}
	}
	if err != nil {
		return Token{}, err
	}

	t.raw = raw
	return t, nil
}

// parseFields decodes the fields following the class tag:
// order id, [customer id], timestamp, nonce.
func parseFields(class Class, tag string, fields []string, want int) (Token, error) {
	if len(fields) != want {
		return Token{}, rejection.Newf(rejection.MalformedToken,
			"%s token needs %d fields after the tag, got %d", class, want, len(fields))
	}

	orderID, err := kernel.UUIDFromString(fields[0])
	if err != nil {
		return Token{}, rejection.Wrap(rejection.MalformedToken, err)
	}

	t := Token{class: class, tag: tag, orderID: orderID}
	rest := fields[1:]

	if class == Recipient {
		customerID, custErr := kernel.UUIDFromString(rest[0])
		if custErr != nil {
			return Token{}, rejection.Wrap(rejection.MalformedToken, custErr)
		}
		t.customerID = &customerID
		rest = rest[1:]
	}

	issuedAt, err := time.ParseInLocation(TimestampLayout, rest[0], time.UTC)
	if err != nil {
		return Token{}, rejection.Wrap(rejection.MalformedToken, err)
	}
	t.issuedAt = issuedAt

	if !isHex(rest[1]) {
		return Token{}, rejection.New(rejection.MalformedToken, "random suffix is not hex")
	}
	t.nonce = rest[1]

	return t, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
