// Package promo applies and re-validates promo codes against the external
// promo service.
package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freshkart/backend-cart/internal/money"
)

// Status is the promo lifecycle phase.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusApplying Status = "applying"
	StatusApplied  Status = "applied"
)

// State is the promo portion of a cart session.
type State struct {
	Status   Status      `json:"status"`
	Code     string      `json:"code,omitempty"`
	Discount money.Money `json:"discount,omitempty"`
}

// Applied reports whether a promo discount is currently in effect.
func (s State) Applied() bool { return s.Status == StatusApplied }

// Result is a successful validation outcome from the promo service.
type Result struct {
	Code     string
	Discount money.Money
}

// RejectedError is a definitive refusal from the promo service, carrying the
// user-facing message it returned.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "promo code rejected"
	}
	return e.Message
}

// ErrUnavailable covers transport failures and the open circuit, where the
// service gave no verdict either way.
var ErrUnavailable = errors.New("promo service unavailable")

// ErrNoPromo is returned when an operation needs an applied promo and there
// is none.
var ErrNoPromo = errors.New("no promo code applied")

// Validator checks a promo code against the current cart subtotal.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal money.Money, sessionID string) (Result, error)
}

// Engine runs promo state transitions. All methods are pure with respect to
// the passed-in state; callers persist the returned state.
type Engine struct {
	Validator Validator
}

// Apply validates a code on behalf of the user. Rejection and unavailability
// both surface as errors; the returned state is always safe to persist.
func (e *Engine) Apply(ctx context.Context, st State, code string, subtotal money.Money, sessionID string) (State, error) {
	if e == nil || e.Validator == nil {
		return st, errors.New("promo engine not configured")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return st, &RejectedError{Message: "promo code is required"}
	}

	res, err := e.Validator.Validate(ctx, code, subtotal, sessionID)
	if err != nil {
		var rej *RejectedError
		if errors.As(err, &rej) {
			return State{Status: StatusIdle}, err
		}
		return State{Status: StatusIdle}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return State{
		Status:   StatusApplied,
		Code:     res.Code,
		Discount: money.ClampNonNegative(res.Discount),
	}, nil
}

// Revalidate silently re-checks an applied promo after the subtotal changed.
// Any failure reverts to Idle without surfacing an error, since the condition
// that made the code valid may have legitimately changed.
func (e *Engine) Revalidate(ctx context.Context, st State, subtotal money.Money, sessionID string) (State, Outcome) {
	if !st.Applied() {
		return st, OutcomeNoop
	}
	if e == nil || e.Validator == nil {
		return st, OutcomeNoop
	}

	res, err := e.Validator.Validate(ctx, st.Code, subtotal, sessionID)
	if err != nil {
		return State{Status: StatusIdle}, OutcomeDropped
	}
	next := State{
		Status:   StatusApplied,
		Code:     res.Code,
		Discount: money.ClampNonNegative(res.Discount),
	}
	if next.Discount != st.Discount {
		return next, OutcomeAdjusted
	}
	return next, OutcomeKept
}

// Remove clears any applied promo. Removing when nothing is applied is a
// no-op rather than an error.
func (e *Engine) Remove(st State) State {
	_ = st
	return State{Status: StatusIdle}
}

// Outcome describes what a silent revalidation did.
type Outcome string

const (
	OutcomeNoop     Outcome = "noop"
	OutcomeKept     Outcome = "kept"
	OutcomeAdjusted Outcome = "adjusted"
	OutcomeDropped  Outcome = "dropped"
)
