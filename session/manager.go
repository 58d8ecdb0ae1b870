package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"orderdesk/catalog"
	"orderdesk/models"
	"orderdesk/order"
)

// ErrUnknownProduct rejects adding an id the catalog does not have.
var ErrUnknownProduct = errors.New("product not in catalog")

var errNoChange = errors.New("session: nothing changed")

// Publisher receives every committed change for redraw notifications.
type Publisher interface {
	Publish(sessionID string, change models.Change)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, models.Change) {}

// Manager applies user actions to session state. Each action either commits
// completely and publishes one Change, or leaves the session as it was.
type Manager struct {
	store   Store
	catalog *catalog.Catalog
	clock   order.Clock
	pub     Publisher
	logger  *zap.Logger
}

func NewManager(store Store, cat *catalog.Catalog, clock order.Clock, pub Publisher, logger *zap.Logger) *Manager {
	if pub == nil {
		pub = nopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, catalog: cat, clock: clock, pub: pub, logger: logger}
}

func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// View returns a read-only snapshot of the session.
func (m *Manager) View(ctx context.Context, id string) (*State, error) {
	st, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st.Order.WithClock(m.clock)
	return st, nil
}

// mutate runs fn inside a store update. fn reports whether it changed
// anything; no-op actions are neither saved nor published.
func (m *Manager) mutate(ctx context.Context, id string, fn func(*State) (models.Change, bool, error)) (models.Change, bool, error) {
	var (
		change  models.Change
		changed bool
	)
	err := m.store.Update(ctx, id, func(st *State) error {
		st.Order.WithClock(m.clock)
		var err error
		change, changed, err = fn(st)
		if err != nil {
			return err
		}
		if !changed {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return models.Change{}, false, nil
	}
	if err != nil {
		return models.Change{}, false, err
	}

	m.logger.Debug("session changed",
		zap.String("session", id),
		zap.String("kind", string(change.Kind)),
		zap.String("product", change.ProductID),
	)
	m.pub.Publish(id, change)
	return change, true, nil
}

// AddItem adds quantity units of productID to the session's cart.
func (m *Manager) AddItem(ctx context.Context, id, productID string, quantity int) (models.Change, error) {
	if _, ok := m.catalog.Lookup(productID); !ok {
		return models.Change{}, fmt.Errorf("add %q: %w", productID, ErrUnknownProduct)
	}
	change, _, err := m.mutate(ctx, id, func(st *State) (models.Change, bool, error) {
		c, err := st.Cart.Add(productID, quantity)
		return c, err == nil, err
	})
	return change, err
}

// RemoveItem deletes the line for productID. Removing an absent line is
// not an error and reports false.
func (m *Manager) RemoveItem(ctx context.Context, id, productID string) (models.Change, bool, error) {
	return m.mutate(ctx, id, func(st *State) (models.Change, bool, error) {
		c, ok := st.Cart.Remove(productID)
		return c, ok, nil
	})
}

func (m *Manager) ClearCart(ctx context.Context, id string) (models.Change, error) {
	change, _, err := m.mutate(ctx, id, func(st *State) (models.Change, bool, error) {
		return st.Cart.Clear(), true, nil
	})
	return change, err
}

func (m *Manager) AdvanceOrder(ctx context.Context, id string) (models.Change, error) {
	change, _, err := m.mutate(ctx, id, func(st *State) (models.Change, bool, error) {
		return st.Order.Advance(), true, nil
	})
	return change, err
}

func (m *Manager) SetCustomer(ctx context.Context, id, name string) (models.Change, error) {
	change, _, err := m.mutate(ctx, id, func(st *State) (models.Change, bool, error) {
		return st.Order.SetCustomerName(name), true, nil
	})
	return change, err
}
