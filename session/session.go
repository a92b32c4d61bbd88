// Package session owns the per-visitor cart context: the current snapshot,
// its event history, and the bounded store that keeps sessions in memory.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/logic"
)

const cartDomain = "cart"

// Session is the explicit context object for one visitor's cart.
//
// Operations run to completion under mu: read the current snapshot,
// compute the next one, then publish it together with its events.
type Session struct {
	id           string
	cover        evented.Cover
	createdAt    time.Time
	historyLimit int

	mu   sync.Mutex
	cart logic.Cart
	book *evented.EventBook
}

// newSession opens an empty cart. Once the history holds more than
// historyLimit pages it is replaced by a single snapshot page; zero keeps
// every page.
func newSession(id string, historyLimit int) *Session {
	cover := evented.Cover{Domain: cartDomain, Root: evented.CartRoot(id)}
	return &Session{
		id:           id,
		cover:        cover,
		createdAt:    time.Now(),
		historyLimit: historyLimit,
		book:         evented.NewEventBook(cover),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Root returns the deterministic aggregate root of the session's cart.
func (s *Session) Root() uuid.UUID { return s.cover.Root }

// Cover identifies the session's cart aggregate.
func (s *Session) Cover() evented.Cover { return s.cover }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Cart returns the current snapshot.
func (s *Session) Cart() logic.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// History returns a copy of the cart's event history.
func (s *Session) History() *evented.EventBook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Clone()
}

// apply runs op against the current snapshot and publishes the result
// together with the event pages it appended. Nothing is published when op
// fails.
func (s *Session) apply(op func(logic.Cart) (logic.Outcome, error)) (logic.Outcome, []*evented.EventPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := op(s.cart)
	if err != nil {
		return logic.Outcome{Cart: s.cart}, nil, err
	}

	pages, err := s.book.Pack(outcome.Events...)
	if err != nil {
		return logic.Outcome{Cart: s.cart}, nil, err
	}
	s.book.Pages = append(s.book.Pages, pages...)
	s.cart = outcome.Cart
	if s.historyLimit > 0 && len(s.book.Pages) > s.historyLimit {
		s.compact()
	}
	return outcome, pages, nil
}

// compact replaces the history with one snapshot of the current cart.
// Sequence numbers keep counting from where the history stopped.
func (s *Session) compact() {
	page, err := evented.PackEvent(logic.NewCartSnapshot(s.cart), evented.NextSequence(s.book))
	if err != nil {
		return
	}
	s.book = &evented.EventBook{Cover: s.cover, Pages: []*evented.EventPage{page}}
}
