// Package booking runs the simulated checkout wizard: a traveller picks a
// catalog item, enters trip details, pays with a test card and waits for a
// processing step that either confirms or declines the booking.
package booking

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/HerbHall/lankaportal/pkg/content"
)

// State is the position of a checkout in the wizard.
type State string

const (
	StateDetails    State = "details"
	StatePayment    State = "payment"
	StateProcessing State = "processing"
	StateConfirmed  State = "confirmed"
	StateCancelled  State = "cancelled"
	StateFailed     State = "failed"
	StateExpired    State = "expired"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateConfirmed, StateCancelled, StateFailed, StateExpired:
		return true
	}
	return false
}

// transitions lists the legal target states for each state.
var transitions = map[State][]State{
	StateDetails:    {StatePayment, StateCancelled, StateExpired},
	StatePayment:    {StatePayment, StateProcessing, StateCancelled, StateExpired},
	StateProcessing: {StateConfirmed, StateFailed, StateCancelled, StateExpired},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

var (
	ErrNotFound          = errors.New("checkout not found")
	ErrInvalidTransition = errors.New("invalid checkout transition")
)

// TransitionError reports a step that the checkout's state does not allow.
type TransitionError struct {
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move checkout from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// InputError reports invalid details or payment input.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string { return e.Field + " " + e.Reason }

// Details is the traveller information collected in the first step.
type Details struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Date       string `json:"date"`
	Travellers int    `json:"travellers"`
}

// Card is the payment step input. Only the last four digits are kept.
type Card struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

// Payment is the stored summary of a card payment.
type Payment struct {
	Last4     string  `json:"last4"`
	AmountUSD float64 `json:"amount_usd"`
}

// Checkout is one wizard session.
type Checkout struct {
	ID          string                 `json:"id"`
	State       State                  `json:"state"`
	Collection  content.CollectionName `json:"collection"`
	ItemID      string                 `json:"item_id"`
	ItemName    string                 `json:"item_name"`
	UnitFeeUSD  float64                `json:"unit_fee_usd"`
	Details     *Details               `json:"details,omitempty"`
	Payment     *Payment               `json:"payment,omitempty"`
	Reference   string                 `json:"reference,omitempty"`
	Error       string                 `json:"error,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ConfirmedAt time.Time              `json:"confirmed_at,omitzero"`
}

const (
	maxNameLen    = 100
	maxTravellers = 20
	dateLayout    = time.DateOnly
)

// declineSuffix marks the test card that is always declined.
const declineSuffix = "0002"

// validateDetails trims d in place and checks it against today.
func validateDetails(d *Details, today time.Time) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Date = strings.TrimSpace(d.Date)

	switch n := utf8.RuneCountInString(d.Name); {
	case n == 0:
		return &InputError{"name", "is required"}
	case n > maxNameLen:
		return &InputError{"name", fmt.Sprintf("must be at most %d characters", maxNameLen)}
	}
	addr, err := mail.ParseAddress(d.Email)
	if err != nil || addr.Address != d.Email {
		return &InputError{"email", "is not a valid address"}
	}
	day, err := time.Parse(dateLayout, d.Date)
	if err != nil {
		return &InputError{"date", "must be YYYY-MM-DD"}
	}
	y, m, dd := today.Date()
	if day.Before(time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)) {
		return &InputError{"date", "must not be in the past"}
	}
	if d.Travellers < 1 || d.Travellers > maxTravellers {
		return &InputError{"travellers", fmt.Sprintf("must be between 1 and %d", maxTravellers)}
	}
	return nil
}

// validateCard checks the number with the Luhn algorithm and the expiry
// (MM/YY) against now, returning the digits-only number.
func validateCard(c Card, now time.Time) (string, error) {
	number := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, c.Number)
	if len(number) < 13 || len(number) > 19 || !allDigits(number) || !luhn(number) {
		return "", &InputError{"number", "is not a valid card number"}
	}

	exp, err := time.Parse("01/06", strings.TrimSpace(c.Expiry))
	if err != nil {
		return "", &InputError{"expiry", "must be MM/YY"}
	}
	// A card is valid through the last day of its expiry month.
	if !now.Before(exp.AddDate(0, 1, 0)) {
		return "", &InputError{"expiry", "is in the past"}
	}
	if n := len(c.CVC); n < 3 || n > 4 || !allDigits(c.CVC) {
		return "", &InputError{"cvc", "must be 3 or 4 digits"}
	}
	return number, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return s != ""
}

func luhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
