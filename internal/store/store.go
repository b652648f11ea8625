// Package store owns the meters table state: the current page, the cursor and the
// address book. Callers construct one Store and pass it to whatever renders it.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/pagination"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/resolver"
)

const DefaultLimit = 20

// ErrStalePage is returned when a newer fetch started before this one finished.
// The stale response is dropped.
var ErrStalePage = errors.New("stale page response discarded")

// ErrDelete marks a failed upstream delete, as opposed to a failed refetch after it.
var ErrDelete = errors.New("delete meter failed")

type MetersAPI interface {
	ListMeters(ctx context.Context, limit, offset int) (*domain.MetersPage, error)
	DeleteMeter(ctx context.Context, id string) error
}

type AddressResolver interface {
	Resolve(ctx context.Context, ids []string, sink resolver.Sink) []resolver.Outcome
}

// Listener is called after every state change, in subscription order.
type Listener func(domain.Event)

// State is a point-in-time copy of the store.
type State struct {
	Meters    []domain.Meter            `json:"meters"`
	Cursor    pagination.Cursor         `json:"cursor"`
	Addresses map[string]domain.Address `json:"addresses"`
}

// PageResult describes a completed fetch.
type PageResult struct {
	Cursor   pagination.Cursor
	Outcomes []resolver.Outcome
}

type Store struct {
	api      MetersAPI
	resolver AddressResolver
	log      zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	meters    []domain.Meter
	cursor    pagination.Cursor
	shown     int // offset of the page in meters
	book      *resolver.AddressBook
	gen       uint64
	listeners []subscription
	nextSubID int
}

type subscription struct {
	id int
	fn Listener
}

func New(api MetersAPI, res AddressResolver, limit int, logger zerolog.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		api:      api,
		resolver: res,
		log:      logger,
		now:      time.Now,
		cursor:   pagination.Cursor{Limit: limit},
		book:     resolver.NewAddressBook(),
	}
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	meters := make([]domain.Meter, len(s.meters))
	copy(meters, s.meters)
	cursor := s.cursor
	s.mu.Unlock()

	return State{Meters: meters, Cursor: cursor, Addresses: s.book.Snapshot()}
}

func (s *Store) Cursor() pagination.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Address reads one entry of the address book.
func (s *Store) Address(id string) (domain.Address, bool) {
	return s.book.Get(id)
}

// FetchPage reloads the page at the current offset and then resolves its addresses.
// On error the previous page and offset stay in place.
func (s *Store) FetchPage(ctx context.Context) (*PageResult, error) {
	res, _, err := s.fetch(ctx, nil)
	return res, err
}

// GoToPage moves to page n (1-based) and fetches it. n is not checked against the
// total; a page past the end comes back empty.
func (s *Store) GoToPage(ctx context.Context, n int) (*PageResult, error) {
	res, _, err := s.fetch(ctx, func(c *pagination.Cursor) bool {
		c.Offset = pagination.OffsetFor(n, c.Limit)
		return true
	})
	return res, err
}

// NextPage advances one page when one exists. It reports whether a fetch happened.
func (s *Store) NextPage(ctx context.Context) (bool, error) {
	_, moved, err := s.fetch(ctx, func(c *pagination.Cursor) bool {
		if !c.HasNext() {
			return false
		}
		c.Offset += c.Limit
		return true
	})
	return moved, err
}

// PrevPage steps back one page unless already at the start.
func (s *Store) PrevPage(ctx context.Context) (bool, error) {
	_, moved, err := s.fetch(ctx, func(c *pagination.Cursor) bool {
		if !c.HasPrev() {
			return false
		}
		c.Offset -= c.Limit
		return true
	})
	return moved, err
}

// DeleteMeter deletes upstream and, on success, refetches the current page once.
// Rows are never removed locally.
func (s *Store) DeleteMeter(ctx context.Context, id string) (*PageResult, error) {
	if err := s.api.DeleteMeter(ctx, id); err != nil {
		s.log.Error().Err(err).Str("meter_id", id).Msg("delete meter failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrDelete, id, err)
	}

	cursor := s.Cursor()
	s.log.Info().Str("meter_id", id).Int("offset", cursor.Offset).Msg("meter deleted")
	s.emit(s.event(domain.EventMeterDeleted, id, cursor))

	return s.FetchPage(ctx)
}

func (s *Store) fetch(ctx context.Context, move func(*pagination.Cursor) bool) (*PageResult, bool, error) {
	s.mu.Lock()
	if move != nil && !move(&s.cursor) {
		s.mu.Unlock()
		return nil, false, nil
	}
	s.gen++
	gen := s.gen
	limit, offset := s.cursor.Limit, s.cursor.Offset
	s.mu.Unlock()

	page, err := s.api.ListMeters(ctx, limit, offset)
	if err != nil {
		s.mu.Lock()
		if gen == s.gen {
			s.cursor.Offset = s.shown
		}
		s.mu.Unlock()
		s.log.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("fetch meters failed")
		return nil, true, fmt.Errorf("fetch meters page at offset %d: %w", offset, err)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Warn().Int("offset", offset).Uint64("generation", gen).Msg("dropping stale meters page")
		return nil, true, ErrStalePage
	}
	s.meters = page.Results
	s.shown = offset
	s.cursor.Total = page.Count
	cursor := s.cursor
	s.mu.Unlock()

	s.log.Debug().Int("offset", offset).Int("count", page.Count).Int("rows", len(page.Results)).Msg("meters page loaded")
	s.emit(s.event(domain.EventPageLoaded, "", cursor))

	ids := make([]string, 0, len(page.Results))
	for _, m := range page.Results {
		ids = append(ids, m.Area.ID)
	}
	outcomes := s.resolver.Resolve(ctx, ids, sink{s})

	return &PageResult{Cursor: cursor, Outcomes: outcomes}, true, nil
}

func (s *Store) event(kind domain.EventKind, subject string, c pagination.Cursor) domain.Event {
	return domain.Event{
		Kind:      kind,
		SubjectID: subject,
		Offset:    c.Offset,
		Total:     c.Total,
		Timestamp: s.now().UTC(),
	}
}

func (s *Store) emit(ev domain.Event) {
	s.mu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// sink routes resolved addresses into the book and out to listeners.
type sink struct{ s *Store }

func (k sink) Put(a domain.Address) {
	k.s.book.Put(a)
	k.s.emit(k.s.event(domain.EventAddressResolved, a.ID, k.s.Cursor()))
}
