package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/pkg/errs"
)

// NonceBytes is the entropy of every random suffix.
const NonceBytes = 8

// Generator mints fresh tokens. Two calls never return the same payload, so
// regenerating a token invalidates the previous one once it is stored.
type Generator struct {
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator returns a generator backed by crypto/rand and the wall clock.
func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.Reader, time.Now)
}

// NewGeneratorWithSource lets tests pin the entropy source and the clock.
func NewGeneratorWithSource(entropy io.Reader, now func() time.Time) *Generator {
	return &Generator{entropy: entropy, now: now}
}

// Generate builds a token of the given class. customerID is required for
// Recipient tokens and ignored for Package tokens.
//
// A failing entropy source is not recoverable: issuing guessable tokens
// would break the authorization model, so Generate panics.
func (g *Generator) Generate(orderID kernel.UUID, class Class, customerID *kernel.UUID) (Token, error) {
	if err := orderID.Validate(); err != nil {
		return Token{}, err
	}
	if err := class.Validate(); err != nil {
		return Token{}, err
	}

	t := Token{
		class:    class,
		tag:      class.tag(),
		orderID:  orderID,
		issuedAt: g.now().UTC().Truncate(time.Second),
		nonce:    g.nonce(),
	}

	if class == Recipient {
		if customerID == nil {
			return Token{}, errs.NewValueIsRequiredError("customer id")
		}
		if err := customerID.Validate(); err != nil {
			return Token{}, err
		}
		id := *customerID
		t.customerID = &id
	}

	return t, nil
}

// MintPackageToken returns the payload of a new package token.
func (g *Generator) MintPackageToken(orderID kernel.UUID) (string, error) {
	t, err := g.Generate(orderID, Package, nil)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// MintRecipientToken returns the payload of a new recipient token.
func (g *Generator) MintRecipientToken(orderID, customerID kernel.UUID) (string, error) {
	t, err := g.Generate(orderID, Recipient, &customerID)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

func (g *Generator) nonce() string {
	buf := make([]byte, NonceBytes)
	if _, err := io.ReadFull(g.entropy, buf); err != nil {
		panic(fmt.Sprintf("token: entropy source failed: %v", err))
	}
	return hex.EncodeToString(buf)
}
