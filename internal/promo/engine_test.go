package promo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/freshkart/backend-cart/internal/money"
	"github.com/freshkart/backend-cart/internal/resilience"
)

type fakeValidator struct {
	result Result
	err    error
	calls  int
}

func (f *fakeValidator) Validate(_ context.Context, code string, _ money.Money, _ string) (Result, error) {
	f.calls++
	if f.err != nil {
		return Result{}, f.err
	}
	res := f.result
	if res.Code == "" {
		res.Code = code
	}
	return res, nil
}

func TestApplySuccess(t *testing.T) {
	v := &fakeValidator{result: Result{Discount: 5000}}
	e := &Engine{Validator: v}

	st, err := e.Apply(context.Background(), State{}, " fresh10 ", 60000, "sess-1")
	require.NoError(t, err)
	require.True(t, st.Applied())
	require.Equal(t, "FRESH10", st.Code)
	require.Equal(t, money.Money(5000), st.Discount)
}

func TestApplyRejectedSurfacesMessage(t *testing.T) {
	v := &fakeValidator{err: &RejectedError{Message: "minimum order not met"}}
	e := &Engine{Validator: v}

	st, err := e.Apply(context.Background(), State{}, "FRESH10", 1000, "sess-1")
	require.Error(t, err)
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, "minimum order not met", rej.Message)
	require.False(t, st.Applied())
}

func TestApplyUnavailable(t *testing.T) {
	v := &fakeValidator{err: errors.New("connection refused")}
	e := &Engine{Validator: v}

	st, err := e.Apply(context.Background(), State{}, "FRESH10", 60000, "sess-1")
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, st.Applied())
}

func TestRevalidateAdjustsDiscount(t *testing.T) {
	v := &fakeValidator{result: Result{Discount: 3000}}
	e := &Engine{Validator: v}
	applied := State{Status: StatusApplied, Code: "FRESH10", Discount: 5000}

	st, outcome := e.Revalidate(context.Background(), applied, 30000, "sess-1")
	require.Equal(t, OutcomeAdjusted, outcome)
	require.Equal(t, money.Money(3000), st.Discount)
	require.True(t, st.Applied())
}

func TestRevalidateFailureRevertsSilently(t *testing.T) {
	e := &Engine{Validator: &fakeValidator{err: &RejectedError{Message: "expired"}}}
	applied := State{Status: StatusApplied, Code: "FRESH10", Discount: 5000}

	st, outcome := e.Revalidate(context.Background(), applied, 30000, "sess-1")
	require.Equal(t, OutcomeDropped, outcome)
	require.Equal(t, StatusIdle, st.Status)
	require.Empty(t, st.Code)
	require.Equal(t, money.Money(0), st.Discount)

	// transport failure is treated the same way in silent mode
	e = &Engine{Validator: &fakeValidator{err: errors.New("timeout")}}
	st, outcome = e.Revalidate(context.Background(), applied, 30000, "sess-1")
	require.Equal(t, OutcomeDropped, outcome)
	require.Equal(t, StatusIdle, st.Status)
}

func TestRevalidateNoopWhenIdle(t *testing.T) {
	v := &fakeValidator{}
	e := &Engine{Validator: v}

	st, outcome := e.Revalidate(context.Background(), State{Status: StatusIdle}, 30000, "sess-1")
	require.Equal(t, OutcomeNoop, outcome)
	require.Equal(t, StatusIdle, st.Status)
	require.Zero(t, v.calls)
}

func TestRemoveIdempotent(t *testing.T) {
	e := &Engine{Validator: &fakeValidator{}}
	st := e.Remove(State{Status: StatusApplied, Code: "FRESH10", Discount: 5000})
	require.Equal(t, StatusIdle, st.Status)
	st = e.Remove(st)
	require.Equal(t, StatusIdle, st.Status)
}

func TestDebouncerReplacesPendingRuns(t *testing.T) {
	d := &Debouncer{Delay: 20 * time.Millisecond}
	var fired atomic.Int64
	var lastSeq atomic.Uint64

	for i := 0; i < 5; i++ {
		d.Schedule(func(seq uint64) {
			fired.Add(1)
			lastSeq.Store(seq)
		})
	}

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, uint64(5), lastSeq.Load())
	require.False(t, d.Stale(5))
	require.True(t, d.Stale(4))
}

func TestDebouncerStopInvalidatesInFlight(t *testing.T) {
	d := &Debouncer{Delay: 10 * time.Millisecond}
	seq := d.Schedule(func(uint64) {})
	d.Stop()
	require.True(t, d.Stale(seq))
}

func TestHTTPValidator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/validate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"code":"FRESH10","discountAmount":4200}`))
	}))
	defer srv.Close()

	v := &HTTPValidator{
		BaseURL: srv.URL,
		Client:  srv.Client(),
		Breaker: resilience.NewBreaker("promo", 5, 0.5, time.Second, zerolog.Nop()),
	}
	res, err := v.Validate(context.Background(), "FRESH10", 60000, "sess-1")
	require.NoError(t, err)
	require.Equal(t, money.Money(4200), res.Discount)
}

func TestHTTPValidatorRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"code expired"}`))
	}))
	defer srv.Close()

	v := &HTTPValidator{
		BaseURL: srv.URL,
		Client:  srv.Client(),
		Breaker: resilience.NewBreaker("promo", 5, 0.5, time.Second, zerolog.Nop()),
	}
	_, err := v.Validate(context.Background(), "FRESH10", 60000, "sess-1")
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, "code expired", rej.Message)
}

func TestHTTPValidatorRejectionsLeaveBreakerClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"invalid code"}`))
	}))
	defer srv.Close()

	v := &HTTPValidator{
		BaseURL: srv.URL,
		Client:  srv.Client(),
		Breaker: resilience.NewBreaker("promo", 2, 0.5, time.Minute, zerolog.Nop()),
	}
	// a user fat-fingering codes is a normal answer, not downstream trouble
	for i := 0; i < 5; i++ {
		_, err := v.Validate(context.Background(), "FRESH10", 60000, "sess-1")
		var rej *RejectedError
		require.ErrorAs(t, err, &rej)
		require.NotErrorIs(t, err, resilience.ErrOpenCircuit)
	}
}

func TestHTTPValidatorOpenCircuit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	v := &HTTPValidator{
		BaseURL: srv.URL,
		Client:  srv.Client(),
		Breaker: resilience.NewBreaker("promo", 2, 0.5, time.Minute, zerolog.Nop()),
	}
	for i := 0; i < 3; i++ {
		_, err := v.Validate(context.Background(), "FRESH10", 60000, "sess-1")
		require.Error(t, err)
	}
	_, err := v.Validate(context.Background(), "FRESH10", 60000, "sess-1")
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
}
