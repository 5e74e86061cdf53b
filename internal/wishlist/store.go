package wishlist

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-ecom/internal/cart"
	"github.com/MikeMC777/storefront-ecom/internal/localstore"
	"github.com/MikeMC777/storefront-ecom/internal/product"
)

const storeKey = "wishlist"

type Entry struct {
	ProductID string          `json:"productId"`
	Slug      string          `json:"slug"`
	Title     string          `json:"title"`
	MainImage string          `json:"mainImage"`
	Price     decimal.Decimal `json:"price"`
}

// EntryFrom builds a wishlist entry from a catalog product.
func EntryFrom(p product.Product) Entry {
	return Entry{ProductID: p.ID, Slug: p.Slug, Title: p.Title, MainImage: p.MainImage, Price: p.Price}
}

// Store is the anonymous, locally persisted wishlist.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	p       localstore.Persister
}

func NewStore(p localstore.Persister) (*Store, error) {
	s := &Store{p: p}
	data, ok, err := p.Read(storeKey)
	if err != nil {
		return nil, err
	}
	if ok {
		var stored []Entry
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, errors.Wrap(err, "decode wishlist")
		}
		s.entries = dedupe(stored)
	}
	return s, nil
}

// Add stores e unless its product is already present.
func (s *Store) Add(e Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ProductID == "" || s.index(e.ProductID) >= 0 {
		return false, nil
	}
	return true, s.commit(append(s.copyEntries(), e))
}

func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	next := s.copyEntries()
	return true, s.commit(append(next[:i], next[i+1:]...))
}

// Toggle adds e when absent and removes it when present.
func (s *Store) Toggle(e Entry) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.copyEntries()
	if i := s.index(e.ProductID); i >= 0 {
		return false, s.commit(append(next[:i], next[i+1:]...))
	}
	return true, s.commit(append(next, e))
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(id) >= 0
}

func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyEntries()
}

// Replace overwrites the local list, e.g. with the server copy after login.
func (s *Store) Replace(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(dedupe(entries))
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(nil)
}

// MoveToCart adds one unit of the entry to c and drops it from the wishlist.
func (s *Store) MoveToCart(id string, c *cart.Store) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return errors.Errorf("product %s is not in the wishlist", id)
	}
	e := s.entries[i]
	s.mu.Unlock()

	if err := c.Add(cart.Item{ProductID: e.ProductID, Title: e.Title, UnitPrice: e.Price, Image: e.MainImage}, 1); err != nil {
		return err
	}
	_, err := s.Remove(id)
	return err
}

func (s *Store) index(id string) int {
	for i, e := range s.entries {
		if e.ProductID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyEntries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// commit persists next and only then makes it the current list.
func (s *Store) commit(next []Entry) error {
	entries := next
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "encode wishlist")
	}
	if err := s.p.Write(storeKey, data); err != nil {
		return err
	}
	s.entries = next
	return nil
}

// dedupe keeps the first entry per product and drops entries without one.
func dedupe(in []Entry) []Entry {
	var out []Entry
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		if e.ProductID == "" || seen[e.ProductID] {
			continue
		}
		seen[e.ProductID] = true
		out = append(out, e)
	}
	return out
}
