package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository/blob"
)

// DefaultKey is the blob key used when none is configured.
const DefaultKey = "cart"

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Store owns every read and write of persisted carts. The persisted blob is
// the source of truth; a domain.Cart is a projection reloaded for each operation.
type Store struct {
	repo        blob.Repository
	productRepo productRepo
	logger      *log.Logger

	// Keys hash onto a fixed set of stripes, so unrelated keys may share a lock.
	locks [lockStripes]sync.Mutex
}

const lockStripes = 64

func New(repo blob.Repository, productRepo productRepo, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		repo:        repo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Load reads and normalizes the cart at key. Absent or malformed blobs yield an
// empty cart; only a failing backend is reported as an error.
func (s *Store) Load(ctx context.Context, key string) (domain.Cart, error) {
	data, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cart %q: %w", key, err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return domain.Cart{}, nil
	}
	raw, err := decodeJSON(data)
	if err != nil {
		s.logger.Printf("cart store: key=%s malformed blob, treating as empty: %v", key, err)
		return domain.Cart{}, nil
	}
	if raw == nil {
		return domain.Cart{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		s.logger.Printf("cart store: key=%s blob is %T, not a list, treating as empty", key, raw)
		return domain.Cart{}, nil
	}
	return NormalizeAll(list), nil
}

// Save overwrites the cart at key.
func (s *Store) Save(ctx context.Context, key string, c domain.Cart) error {
	unlock := s.lock(key)
	defer unlock()
	return s.save(ctx, key, c)
}

// Clear persists an empty cart at key.
func (s *Store) Clear(ctx context.Context, key string) error {
	unlock := s.lock(key)
	defer unlock()
	return s.save(ctx, key, domain.Cart{})
}

// Open loads the cart, folds duplicates, and writes the merged list back when
// anything was folded.
func (s *Store) Open(ctx context.Context, key string) (domain.Cart, error) {
	unlock := s.lock(key)
	defer unlock()

	loaded, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	merged := MergeDuplicates(loaded)
	if len(merged) != len(loaded) {
		if err := s.save(ctx, key, merged); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// Mutate applies fn to the merged cart and persists the result before
// returning it. Calls for the same key are serialized.
func (s *Store) Mutate(ctx context.Context, key string, fn func(domain.Cart) domain.Cart) (domain.Cart, error) {
	unlock := s.lock(key)
	defer unlock()

	loaded, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	next := fn(MergeDuplicates(loaded))
	if err := s.save(ctx, key, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Add normalizes a raw posted record and adds it to the cart at key.
func (s *Store) Add(ctx context.Context, key string, raw []byte) (domain.Cart, error) {
	item, ok := NormalizeJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: item must be an object with an id", domain.ErrInvalidInput)
	}
	return s.Mutate(ctx, key, func(c domain.Cart) domain.Cart {
		return AddItem(c, item)
	})
}

// AddProduct looks up a catalog product and adds quantity of it to the cart at key.
func (s *Store) AddProduct(ctx context.Context, key, productID string, quantity int) (domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product id required", domain.ErrInvalidInput)
	}
	if s.productRepo == nil {
		return nil, errors.New("product repository unavailable")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", productID, err)
	}
	item := ItemFromProduct(*product, quantity)
	return s.Mutate(ctx, key, func(c domain.Cart) domain.Cart {
		return AddItem(c, item)
	})
}

// SetQuantity updates one line's quantity, clamped to at least one.
func (s *Store) SetQuantity(ctx context.Context, key, id string, quantity int) (domain.Cart, error) {
	return s.Mutate(ctx, key, func(c domain.Cart) domain.Cart {
		return UpdateQuantity(c, id, quantity)
	})
}

// Remove drops one line from the cart at key.
func (s *Store) Remove(ctx context.Context, key, id string) (domain.Cart, error) {
	return s.Mutate(ctx, key, func(c domain.Cart) domain.Cart {
		return RemoveItem(c, id)
	})
}

func (s *Store) save(ctx context.Context, key string, c domain.Cart) error {
	if c == nil {
		c = domain.Cart{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart %q: %w", key, err)
	}
	if err := s.repo.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save cart %q: %w", key, err)
	}
	return nil
}

func (s *Store) lock(key string) func() {
	m := &s.locks[stripe(key)]
	m.Lock()
	return m.Unlock
}

func stripe(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % lockStripes)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return raw, nil
}
