package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freshkart/backend-cart/internal/cart"
	"github.com/freshkart/backend-cart/internal/common"
	"github.com/freshkart/backend-cart/internal/gift"
	"github.com/freshkart/backend-cart/internal/money"
	"github.com/freshkart/backend-cart/internal/promo"
	"github.com/freshkart/backend-cart/internal/resilience"
)

// Handler exposes the cart session API.
type Handler struct {
	Manager *Manager
	Logger  zerolog.Logger

	// PromoLimit, when set, rate limits promo apply attempts.
	PromoLimit func(http.Handler) http.Handler
}

// RegisterRoutes mounts the session endpoints on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cart-sessions", func(r chi.Router) {
		r.Post("/", h.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Put("/items", h.setItems)
			r.Put("/address", h.setAddress)
			r.Put("/tip", h.setTip)
			if h.PromoLimit != nil {
				r.With(h.PromoLimit).Post("/promo", h.applyPromo)
			} else {
				r.Post("/promo", h.applyPromo)
			}
			r.Delete("/promo", h.removePromo)
			r.Post("/gift/select", h.selectGift)
			r.Post("/gift/dismiss", h.dismissGift)
			r.Delete("/gift", h.removeGift)
			r.Post("/switch/confirm", h.confirmSwitch)
			r.Post("/switch/cancel", h.cancelSwitch)
		})
	})
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	ctl, err := h.Manager.Create(r.Context())
	if err != nil {
		h.respondErr(w, View{}, err)
		return
	}
	view, err := ctl.View(r.Context())
	if err != nil {
		h.respondErr(w, view, err)
		return
	}
	common.JSON(w, http.StatusCreated, view)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.View(r.Context())
	})
}

type setItemsRequest struct {
	Items []ItemInput `json:"items" validate:"dive"`
}

func (h *Handler) setItems(w http.ResponseWriter, r *http.Request) {
	var req setItemsRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.SetItems(r.Context(), req.Items)
	})
}

type setAddressRequest struct {
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
}

func (h *Handler) setAddress(w http.ResponseWriter, r *http.Request) {
	var req setAddressRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.SetPincode(r.Context(), req.Pincode)
	})
}

type setTipRequest struct {
	Tip float64 `json:"tip" validate:"gte=0,lte=10000"`
}

func (h *Handler) setTip(w http.ResponseWriter, r *http.Request) {
	var req setTipRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.SetTip(r.Context(), money.FromRupees(req.Tip))
	})
}

type applyPromoRequest struct {
	Code string `json:"code" validate:"required,min=3,max=32"`
}

func (h *Handler) applyPromo(w http.ResponseWriter, r *http.Request) {
	var req applyPromoRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.ApplyPromo(r.Context(), req.Code)
	})
}

func (h *Handler) removePromo(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.RemovePromo(r.Context())
	})
}

type selectGiftRequest struct {
	Gift string `json:"gift" validate:"required,max=200"`
}

func (h *Handler) selectGift(w http.ResponseWriter, r *http.Request) {
	var req selectGiftRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.SelectGift(r.Context(), req.Gift)
	})
}

func (h *Handler) dismissGift(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.DismissGift(r.Context())
	})
}

func (h *Handler) removeGift(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.RemoveGift(r.Context())
	})
}

func (h *Handler) confirmSwitch(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.ConfirmSwitch(r.Context())
	})
}

func (h *Handler) cancelSwitch(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctl *Controller) (View, error) {
		return ctl.CancelSwitch(r.Context())
	})
}

func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, op func(*Controller) (View, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_SESSION_ID", "session id must be a UUID", nil)
		return
	}
	ctl, err := h.Manager.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, View{}, err)
		return
	}
	view, err := op(ctl)
	if err != nil {
		h.respondErr(w, view, err)
		return
	}
	common.JSON(w, http.StatusOK, view)
}

// decode unmarshals and validates the request body, writing the error
// response itself when it reports false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body must be valid JSON", nil)
		return false
	}
	if err := common.ValidateStruct(dst); err != nil {
		h.respondErr(w, View{}, err)
		return false
	}
	return true
}

func (h *Handler) respondErr(w http.ResponseWriter, view View, err error) {
	var rejected *promo.RejectedError
	var appErr *common.AppError

	switch {
	case errors.Is(err, ErrConflict):
		// the view carries the pending conflict for the client to confirm
		common.JSON(w, http.StatusConflict, view)
	case errors.Is(err, ErrNoConflict):
		common.JSONError(w, http.StatusConflict, "NO_PENDING_SWITCH", "there is no pending offer switch to resolve", nil)
	case errors.Is(err, ErrSessionNotFound):
		common.JSONError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "cart session not found or expired", nil)
	case errors.Is(err, cart.ErrBadKey):
		common.JSONError(w, http.StatusUnprocessableEntity, "BAD_ITEM_KEY", err.Error(), nil)
	case errors.Is(err, gift.ErrNoOffer):
		common.JSONError(w, http.StatusUnprocessableEntity, "NO_ELIGIBLE_OFFER", "no gift offer is available at the current order value", nil)
	case errors.Is(err, gift.ErrUnknownGift):
		common.JSONError(w, http.StatusUnprocessableEntity, "UNKNOWN_GIFT", "the selected gift is not part of the current offer", nil)
	case errors.As(err, &rejected):
		common.JSONError(w, http.StatusUnprocessableEntity, "PROMO_REJECTED", rejected.Message, nil)
	case errors.Is(err, promo.ErrUnavailable), errors.Is(err, resilience.ErrOpenCircuit):
		common.JSONError(w, http.StatusServiceUnavailable, "PROMO_UNAVAILABLE", "promo validation is temporarily unavailable, try again shortly", nil)
	case errors.As(err, &appErr):
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
	default:
		h.Logger.Error().Err(err).Msg("cart session operation failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "something went wrong", nil)
	}
}
