package domain

import "fmt"

// CheckoutState tracks the purchase confirmation dialog.
//
//	Idle -> ConfirmOpen -> Idle            (cancelled)
//	        ConfirmOpen -> Processing -> Idle        (cart cleared)
//	                       Processing -> ErrorShown  (partial failure)
//
// ErrorShown and Idle only leave through an explicit Open.
type CheckoutState string

const (
	CheckoutIdle        CheckoutState = "idle"
	CheckoutConfirmOpen CheckoutState = "confirm_open"
	CheckoutProcessing  CheckoutState = "processing"
	CheckoutErrorShown  CheckoutState = "error_shown"
)

func (s CheckoutState) Open() (CheckoutState, error) {
	switch s {
	case CheckoutIdle, CheckoutErrorShown, "":
		return CheckoutConfirmOpen, nil
	default:
		return s, s.invalid("open")
	}
}

func (s CheckoutState) Cancel() (CheckoutState, error) {
	if s != CheckoutConfirmOpen {
		return s, s.invalid("cancel")
	}
	return CheckoutIdle, nil
}

func (s CheckoutState) Begin() (CheckoutState, error) {
	if s != CheckoutConfirmOpen {
		return s, s.invalid("confirm")
	}
	return CheckoutProcessing, nil
}

// Finish leaves Processing; a non-nil err lands in ErrorShown.
func (s CheckoutState) Finish(err error) (CheckoutState, error) {
	if s != CheckoutProcessing {
		return s, s.invalid("finish")
	}
	if err != nil {
		return CheckoutErrorShown, nil
	}
	return CheckoutIdle, nil
}

func (s CheckoutState) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s checkout from state %q", ErrInvalidTransition, action, s)
}
