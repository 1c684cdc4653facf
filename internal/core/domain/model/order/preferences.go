package order

import (
	"fmt"

	"trackit/internal/pkg/errs"
)

// Window is the delivery time window a customer asks for.
type Window string

const (
	Window30Min    Window = "30min"
	Window1Hour    Window = "1hour"
	Window2Hour    Window = "2hour"
	WindowFlexible Window = "flexible"
)

// Windows returns every valid window.
func Windows() []Window {
	return []Window{Window30Min, Window1Hour, Window2Hour, WindowFlexible}
}

// Validate rejects values outside Windows.
func (w Window) Validate() error {
	for _, valid := range Windows() {
		if w == valid {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("delivery window", fmt.Errorf("%q is not a valid window", string(w)))
}

// ParseWindow validates a raw code.
func ParseWindow(code string) (Window, error) {
	w := Window(code)
	if err := w.Validate(); err != nil {
		return "", err
	}
	return w, nil
}

func (w Window) String() string {
	return string(w)
}

// Speed is the delivery speed a customer asks for.
type Speed string

const (
	SpeedExpress  Speed = "express"
	SpeedStandard Speed = "standard"
	SpeedEconomy  Speed = "economy"
)

// Speeds returns every valid speed.
func Speeds() []Speed {
	return []Speed{SpeedExpress, SpeedStandard, SpeedEconomy}
}

// Validate rejects values outside Speeds.
func (s Speed) Validate() error {
	for _, valid := range Speeds() {
		if s == valid {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("delivery speed", fmt.Errorf("%q is not a valid speed", string(s)))
}

// ParseSpeed validates a raw code.
func ParseSpeed(code string) (Speed, error) {
	s := Speed(code)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

func (s Speed) String() string {
	return string(s)
}
