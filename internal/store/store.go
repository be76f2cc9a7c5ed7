// Package store holds the authoritative in-memory cart and keeps it in step
// with durable storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nikolayk812/cartkeeper/internal/domain"
	"github.com/nikolayk812/cartkeeper/internal/port"
)

// ErrConflict is returned by Replace when the cart changed after the snapshot was taken.
var ErrConflict = errors.New("cart changed concurrently")

// Snapshot is a copy of the cart together with the version it was read at.
type Snapshot struct {
	Cart    domain.Cart
	Version uint64
}

type Store struct {
	storage port.CartStorage
	logger  *slog.Logger

	mu      sync.Mutex
	cart    domain.Cart
	version uint64
}

// New seeds the store from storage. A missing, empty or unreadable slot
// yields an empty cart; the cause is logged and never returned.
func New(ctx context.Context, storage port.CartStorage, logger *slog.Logger) *Store {
	s := &Store{
		storage: storage,
		logger:  logger,
	}
	s.cart = s.load(ctx)

	return s
}

func (s *Store) load(ctx context.Context) domain.Cart {
	blob, found, err := s.storage.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "cart storage load failed, starting empty", "error", err)
		return domain.NewCart()
	}
	if !found || len(blob) == 0 {
		return domain.NewCart()
	}

	cart, err := domain.DecodeCart(blob)
	if err != nil {
		s.logger.WarnContext(ctx, "stored cart is malformed, starting empty", "error", err)
		return domain.NewCart()
	}

	s.logger.DebugContext(ctx, "cart loaded", "lines", cart.Len())

	return cart
}

func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Cart:    s.cart.Clone(),
		Version: s.version,
	}
}

// Replace installs next if the store is still at base.Version. The cart is
// serialized once; those bytes are saved to storage and the installed cart is
// decoded from them. A failed save leaves the current cart in place.
func (s *Store) Replace(ctx context.Context, base Snapshot, next domain.Cart) error {
	blob, err := domain.EncodeCart(next)
	if err != nil {
		return fmt.Errorf("domain.EncodeCart: %w", err)
	}

	installed, err := domain.DecodeCart(blob)
	if err != nil {
		return fmt.Errorf("domain.DecodeCart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if base.Version != s.version {
		return ErrConflict
	}

	if err := s.storage.Save(ctx, blob); err != nil {
		return fmt.Errorf("storage.Save: %w", err)
	}

	s.cart = installed
	s.version++

	return nil
}
