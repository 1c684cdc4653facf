package guard_test

import (
	"errors"
	"sync"
	"testing"

	"trackit/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTicketIsNotConstructed = errors.New("ticket must be created via NewTicket")

type ticket struct {
	code  string
	guard guard.ConstructorGuard
}

func newTicket(code string) (ticket, error) {
	if code == "" {
		return ticket{}, errors.New("code is required")
	}
	return ticket{code: code, guard: guard.NewConstructorGuard()}, nil
}

func (t ticket) Validate() error {
	return t.guard.Validate(errTicketIsNotConstructed)
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_returns_given_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expected := errors.New("entity not constructed")

		err := g.Validate(expected)

		require.Error(t, err)
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_returns_default_error_when_nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		require.ErrorIs(t, err, guard.ErrDefaultConstructorGuard)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedUsage(t *testing.T) {
	t.Run("constructed_value_is_valid", func(t *testing.T) {
		tk, err := newTicket("A-1")

		require.NoError(t, err)
		require.NoError(t, tk.Validate())
	})

	t.Run("zero_value_is_rejected", func(t *testing.T) {
		var tk ticket

		require.ErrorIs(t, tk.Validate(), errTicketIsNotConstructed)
	})

	t.Run("copies_keep_the_guard", func(t *testing.T) {
		tk, err := newTicket("A-2")
		require.NoError(t, err)

		cp := tk

		require.NoError(t, cp.Validate())
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(nil))
		}()
	}
	wg.Wait()
}
