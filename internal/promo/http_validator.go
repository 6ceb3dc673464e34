package promo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/freshkart/backend-cart/internal/money"
	"github.com/freshkart/backend-cart/internal/resilience"
)

// HTTPValidator calls the external promo service over HTTP, guarded by a
// circuit breaker so a degraded service does not stall every recompute.
type HTTPValidator struct {
	BaseURL string
	Client  *http.Client
	Breaker *resilience.Breaker
}

type validateRequest struct {
	Code      string `json:"code"`
	Subtotal  int64  `json:"subtotal"`
	SessionID string `json:"sessionId"`
}

type validateResponse struct {
	Success        bool   `json:"success"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discountAmount"`
	Message        string `json:"message"`
}

// Validate posts the code and subtotal to the promo service. A 2xx body with
// success=false becomes a RejectedError; anything else non-2xx or transport
// level is unavailability. Rejections are a normal service answer, so they
// count as breaker successes and only transport-level trouble trips it.
func (v *HTTPValidator) Validate(ctx context.Context, code string, subtotal money.Money, sessionID string) (Result, error) {
	var out Result
	var rejected *RejectedError
	err := v.Breaker.Do(ctx, func(ctx context.Context) error {
		body, err := json.Marshal(validateRequest{Code: code, Subtotal: subtotal, SessionID: sessionID})
		if err != nil {
			return fmt.Errorf("encode validate request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.BaseURL+"/validate", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build validate request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := v.client().Do(req)
		if err != nil {
			return fmt.Errorf("call promo service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("promo service returned %d", resp.StatusCode)
		}
		var decoded validateResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("decode validate response: %w", err)
		}
		if !decoded.Success {
			rejected = &RejectedError{Message: decoded.Message}
			return nil
		}
		out = Result{Code: decoded.Code, Discount: money.Money(decoded.DiscountAmount)}
		if out.Code == "" {
			out.Code = code
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if rejected != nil {
		return Result{}, rejected
	}
	return out, nil
}

func (v *HTTPValidator) client() *http.Client {
	if v.Client != nil {
		return v.Client
	}
	return &http.Client{Timeout: 3 * time.Second}
}
