// Package cart holds the shopping cart on the client side. Totals are
// derived from the lines on every read and the whole cart is persisted after
// each mutation.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-ecom/internal/localstore"
)

const storeKey = "cart"

// Item is the catalog data a line is created from.
type Item struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Image     string          `json:"image"`
}

type Line struct {
	Item
	Quantity int `json:"quantity"`
}

type Totals struct {
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

type snapshot struct {
	Lines []Line `json:"lines"`
}

type Store struct {
	mu    sync.Mutex
	lines []Line
	p     localstore.Persister
}

// New restores the cart persisted in p, if any.
func New(p localstore.Persister) (*Store, error) {
	s := &Store{p: p}
	data, ok, err := p.Read(storeKey)
	if err != nil {
		return nil, err
	}
	if ok {
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, errors.Wrap(err, "decode cart")
		}
		for _, l := range snap.Lines {
			if l.ProductID != "" && l.Quantity > 0 {
				s.lines = append(s.lines, l)
			}
		}
	}
	return s, nil
}

// Add inserts item or increments its existing line. qty <= 0 adds one.
func (s *Store) Add(item Item, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLines()
	if i := s.index(item.ProductID); i >= 0 {
		next[i].Quantity += qty
	} else {
		next = append(next, Line{Item: item, Quantity: qty})
	}
	return s.commit(next)
}

func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil
	}
	next := s.copyLines()
	return s.commit(append(next[:i], next[i+1:]...))
}

// SetQuantity replaces a line's quantity; qty <= 0 removes the line.
func (s *Store) SetQuantity(id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil
	}
	next := s.copyLines()
	if qty <= 0 {
		next = append(next[:i], next[i+1:]...)
	} else {
		next[i].Quantity = qty
	}
	return s.commit(next)
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(nil)
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Totals{Total: decimal.Zero}
	for _, l := range s.lines {
		t.ItemCount += l.Quantity
		t.Total = t.Total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return t
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

func (s *Store) index(id string) int {
	for i, l := range s.lines {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyLines() []Line {
	return append([]Line(nil), s.lines...)
}

// commit persists next and only then makes it the current cart, so a failed
// write leaves memory matching the last stored snapshot.
func (s *Store) commit(next []Line) error {
	lines := next
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(snapshot{Lines: lines})
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.p.Write(storeKey, data); err != nil {
		return err
	}
	s.lines = next
	return nil
}
