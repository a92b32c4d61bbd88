package session

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/logic"
)

// Error message formats for session lookups.
const (
	ErrMsgSessionNotFound = "Session %q not found"
	ErrMsgProductNotFound = "Product %d not found"
)

// DefaultHistoryLimit is the number of event pages a session keeps before
// compacting them into a snapshot.
const DefaultHistoryLimit = 500

// Manager wires the catalog, the cart engine and the session store. It is
// the single writer of every session's cart.
type Manager struct {
	catalog      *catalog.Catalog
	logic        logic.CartLogic
	store        *Store
	logger       *zap.Logger
	historyLimit int
}

// Option configures a Manager.
type Option func(*Manager)

// WithHistoryLimit sets how many event pages a session keeps before they
// are compacted. Zero keeps the full history.
func WithHistoryLimit(limit int) Option {
	return func(m *Manager) {
		if limit >= 0 {
			m.historyLimit = limit
		}
	}
}

// NewManager creates a Manager. A nil logger disables logging.
func NewManager(cat *catalog.Catalog, store *Store, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		catalog:      cat,
		logic:        logic.NewCartLogic(),
		store:        store,
		logger:       logger,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the product catalog sessions shop from.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Replay returns the session's event history together with the cart folded
// back out of it.
func (m *Manager) Replay(sess *Session) (*evented.EventBook, logic.Cart) {
	book := sess.History()
	return book, m.logic.RebuildState(book)
}

// Open starts a session with an empty cart.
func (m *Manager) Open() *Session {
	sess := newSession(uuid.NewString(), m.historyLimit)
	m.store.Put(sess)
	m.logger.Info("session opened",
		zap.String("session_id", sess.ID()),
		zap.String("cart_root", sess.Root().String()),
	)
	return sess
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	sess, ok := m.store.Get(id)
	if !ok {
		return nil, evented.NewNotFoundf(ErrMsgSessionNotFound, id)
	}
	return sess, nil
}

// Close discards a session and its cart.
func (m *Manager) Close(id string) error {
	if !m.store.Remove(id) {
		return evented.NewNotFoundf(ErrMsgSessionNotFound, id)
	}
	m.logger.Info("session closed", zap.String("session_id", id))
	return nil
}

// Add puts one unit of a catalog product into the session's cart.
func (m *Manager) Add(sess *Session, productID int64) (logic.Outcome, error) {
	product, ok := m.catalog.Lookup(productID)
	if !ok {
		return logic.Outcome{Cart: sess.Cart()}, evented.NewNotFoundf(ErrMsgProductNotFound, productID)
	}
	return m.run(sess, "adding item", func(cart logic.Cart) (logic.Outcome, error) {
		return m.logic.HandleAddItem(cart, product)
	}, zap.Int64("product_id", productID))
}

// Remove drops a line from the session's cart.
func (m *Manager) Remove(sess *Session, productID int64) (logic.Outcome, error) {
	return m.run(sess, "removing item", func(cart logic.Cart) (logic.Outcome, error) {
		return m.logic.HandleRemoveItem(cart, productID)
	}, zap.Int64("product_id", productID))
}

// SetQuantity replaces a line's quantity.
func (m *Manager) SetQuantity(sess *Session, productID int64, quantity int32) (logic.Outcome, error) {
	return m.run(sess, "updating quantity", func(cart logic.Cart) (logic.Outcome, error) {
		return m.logic.HandleSetQuantity(cart, productID, quantity)
	}, zap.Int64("product_id", productID), zap.Int32("quantity", quantity))
}

// Increment raises a line's quantity by one.
func (m *Manager) Increment(sess *Session, productID int64) (logic.Outcome, error) {
	return m.run(sess, "incrementing quantity", func(cart logic.Cart) (logic.Outcome, error) {
		return m.logic.HandleIncrementQuantity(cart, productID)
	}, zap.Int64("product_id", productID))
}

// Decrement lowers a line's quantity by one, stopping at one.
func (m *Manager) Decrement(sess *Session, productID int64) (logic.Outcome, error) {
	return m.run(sess, "decrementing quantity", func(cart logic.Cart) (logic.Outcome, error) {
		return m.logic.HandleDecrementQuantity(cart, productID)
	}, zap.Int64("product_id", productID))
}

// Clear empties the session's cart.
func (m *Manager) Clear(sess *Session) (logic.Outcome, error) {
	return m.run(sess, "clearing cart", m.logic.HandleClearCart)
}

func (m *Manager) run(sess *Session, action string, op func(logic.Cart) (logic.Outcome, error), fields ...zap.Field) (logic.Outcome, error) {
	logger := m.logger.With(zap.String("session_id", sess.ID())).With(fields...)

	outcome, pages, err := sess.apply(op)
	if err != nil {
		logger.Warn(action+" rejected", zap.Error(err))
		return outcome, err
	}
	if !outcome.Changed() {
		logger.Debug(action+" changed nothing")
		return outcome, nil
	}
	logger.Info(action,
		zap.Int("events", len(outcome.Events)),
		zap.Int64("total", outcome.Cart.Total()),
		zap.Int64("item_count", outcome.Cart.ItemCount()),
	)
	evented.LogEvents(logger, sess.Cover(), pages)
	return outcome, nil
}
