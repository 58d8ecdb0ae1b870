// Package session scopes carts and order sessions to one browser session
// and applies user actions to them atomically.
package session

import (
	"context"
	"encoding/json"
	"errors"

	"orderdesk/cart"
	"orderdesk/order"
)

// ErrConflict is returned when a store could not commit an update after
// repeated concurrent modifications of the same session.
var ErrConflict = errors.New("session: concurrent update conflict")

// State is everything one browser session owns.
type State struct {
	Cart  *cart.Cart     `json:"cart"`
	Order *order.Session `json:"order"`
}

func NewState() *State {
	return &State{Cart: cart.New(), Order: order.NewSession()}
}

func (s *State) Clone() *State {
	return &State{Cart: s.Cart.Clone(), Order: s.Order.Clone()}
}

func (s *State) UnmarshalJSON(data []byte) error {
	type plain State
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Cart == nil {
		p.Cart = cart.New()
	}
	if p.Order == nil {
		p.Order = order.NewSession()
	}
	*s = State(p)
	return nil
}

// Store keeps State per session id.
type Store interface {
	// Get returns a copy of the session's state, or a fresh State for an
	// unknown id.
	Get(ctx context.Context, id string) (*State, error)
	// Update runs fn on a private copy of the state and commits it only if
	// fn returns nil, so a failed action leaves the session untouched.
	Update(ctx context.Context, id string, fn func(*State) error) error
}
