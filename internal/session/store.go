package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/freshkart/backend-cart/internal/cache"
)

// Store persists session state in Redis across two scopes with different
// lifetimes: the cart scope outlives the browsing session, the ephemeral
// scope does not.
type Store struct {
	Cart      *cache.Cache
	Ephemeral *cache.Cache
}

// LoadCart fetches the durable cart state, reporting whether it existed.
func (s *Store) LoadCart(ctx context.Context, id uuid.UUID) (CartState, bool, error) {
	var st CartState
	ok, err := s.Cart.GetJSON(ctx, cache.CartKey(id.String()), &st)
	if err != nil {
		return CartState{}, false, fmt.Errorf("load cart state: %w", err)
	}
	return st, ok, nil
}

// SaveCart writes the durable cart state, refreshing its TTL.
func (s *Store) SaveCart(ctx context.Context, id uuid.UUID, st CartState) error {
	if err := s.Cart.SetJSON(ctx, cache.CartKey(id.String()), st); err != nil {
		return fmt.Errorf("save cart state: %w", err)
	}
	return nil
}

// LoadEphemeral fetches the session-scoped state; a missing key simply means
// a fresh session.
func (s *Store) LoadEphemeral(ctx context.Context, id uuid.UUID) (EphemeralState, error) {
	var st EphemeralState
	if _, err := s.Ephemeral.GetJSON(ctx, cache.SessionKey(id.String()), &st); err != nil {
		return EphemeralState{}, fmt.Errorf("load session state: %w", err)
	}
	return st, nil
}

// SaveEphemeral writes the session-scoped state, refreshing its TTL.
func (s *Store) SaveEphemeral(ctx context.Context, id uuid.UUID, st EphemeralState) error {
	if err := s.Ephemeral.SetJSON(ctx, cache.SessionKey(id.String()), st); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}

// Drop removes both scopes for a session.
func (s *Store) Drop(ctx context.Context, id uuid.UUID) error {
	if err := s.Cart.Delete(ctx, cache.CartKey(id.String())); err != nil {
		return err
	}
	return s.Ephemeral.Delete(ctx, cache.SessionKey(id.String()))
}
