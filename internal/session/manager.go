package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freshkart/backend-cart/internal/catalog"
	"github.com/freshkart/backend-cart/internal/delivery"
	"github.com/freshkart/backend-cart/internal/events"
	"github.com/freshkart/backend-cart/internal/gift"
	"github.com/freshkart/backend-cart/internal/promo"
)

// ErrSessionNotFound is returned when a session id is unknown and has no
// persisted state to rehydrate from.
var ErrSessionNotFound = errors.New("cart session not found")

// Manager creates and tracks session controllers. Controllers live in memory
// for the duration of a browsing session and are rehydrated from Redis when
// a known id arrives after a restart.
type Manager struct {
	Catalog         catalog.Source
	Rules           delivery.Source
	Delivery        delivery.Engine
	Promo           *promo.Engine
	Gifts           gift.Source
	Store           *Store
	Bus             *events.Bus
	Logger          zerolog.Logger
	TaxRateBps      int32
	RevalidateDelay time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*Controller
}

// Create starts a new session. The active gift thresholds are fetched once
// here, at cart entry.
func (m *Manager) Create(ctx context.Context) (*Controller, error) {
	thresholds, err := m.Gifts.ActiveThresholds(ctx)
	if err != nil {
		return nil, err
	}
	gift.SortThresholds(thresholds)

	ctl := m.newController(uuid.New(), thresholds)
	m.mu.Lock()
	if m.sessions == nil {
		m.sessions = map[uuid.UUID]*Controller{}
	}
	m.sessions[ctl.ID] = ctl
	m.mu.Unlock()
	return ctl, nil
}

// Get returns the controller for an existing session, rehydrating it from
// the store if this process has not seen the id yet.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Controller, error) {
	m.mu.Lock()
	ctl, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return ctl, nil
	}

	st, found, err := m.Store.LoadCart(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	eph, err := m.Store.LoadEphemeral(ctx, id)
	if err != nil {
		return nil, err
	}
	thresholds, err := m.Gifts.ActiveThresholds(ctx)
	if err != nil {
		return nil, err
	}
	gift.SortThresholds(thresholds)

	ctl = m.newController(id, thresholds)
	ctl.cart = st
	ctl.gift = gift.State{
		SelectedGift:     st.SelectedGift,
		AppliedThreshold: st.AppliedThreshold,
		Shown:            eph.ShownThresholds,
	}

	m.mu.Lock()
	if m.sessions == nil {
		m.sessions = map[uuid.UUID]*Controller{}
	}
	if existing, ok := m.sessions[id]; ok {
		// lost the race against a concurrent rehydrate
		ctl = existing
	} else {
		m.sessions[id] = ctl
	}
	m.mu.Unlock()
	return ctl, nil
}

// Sweep drops in-memory controllers idle longer than maxIdle. Their state
// stays in Redis until the TTLs expire, so a later request rehydrates.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, ctl := range m.sessions {
		ctl.mu.Lock()
		idle := ctl.lastAccess.Before(cutoff)
		ctl.mu.Unlock()
		if idle {
			if ctl.Debounce != nil {
				ctl.Debounce.Stop()
			}
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (m *Manager) newController(id uuid.UUID, thresholds []gift.Threshold) *Controller {
	return &Controller{
		ID:         id,
		Catalog:    m.Catalog,
		Rules:      m.Rules,
		Delivery:   m.Delivery,
		Promo:      m.Promo,
		Debounce:   &promo.Debouncer{Delay: m.RevalidateDelay},
		Thresholds: thresholds,
		Store:      m.Store,
		Bus:        m.Bus,
		Logger:     m.Logger.With().Stringer("session_id", id).Logger(),
		TaxRateBps: m.TaxRateBps,
		lastAccess: time.Now(),
	}
}
