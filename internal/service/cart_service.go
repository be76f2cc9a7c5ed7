package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/cartkeeper/internal/domain"
	"github.com/nikolayk812/cartkeeper/internal/port"
	"github.com/nikolayk812/cartkeeper/internal/store"
)

var (
	ErrOutOfStock       = errors.New("requested quantity exceeds available stock")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrProductNotInCart = errors.New("product not in cart")
	ErrInventory        = errors.New("inventory lookup failed")
	ErrPersistence      = errors.New("cart persistence failed")
	ErrConflict         = errors.New("cart kept changing concurrently")
)

const defaultMaxAttempts = 3

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpUpdate Op = "update"
)

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeProductAdded
	OutcomeAmountIncreased
	OutcomeProductRemoved
	OutcomeAmountUpdated
)

type UpdateAmount struct {
	ProductID int64
	Amount    int
}

type Option func(*CartService)

// WithMaxAttempts bounds how often an operation is retried after losing a
// compare-and-swap race against another operation.
func WithMaxAttempts(n int) Option {
	return func(s *CartService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

type CartService struct {
	store     *store.Store
	inventory port.Inventory
	notifier  port.Notifier
	logger    *slog.Logger

	maxAttempts int
}

func New(st *store.Store, inventory port.Inventory, notifier port.Notifier, logger *slog.Logger, opts ...Option) *CartService {
	s := &CartService{
		store:       st,
		inventory:   inventory,
		notifier:    notifier,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CartService) Cart() domain.Cart {
	return s.store.Current().Cart
}

func (s *CartService) AddProduct(ctx context.Context, productID int64) (Outcome, error) {
	outcome, err := s.mutate(ctx, func(cart domain.Cart) (domain.Cart, Outcome, error) {
		return s.addProduct(ctx, cart, productID)
	})
	s.report(ctx, OpAdd, outcome, err, "productID", productID)
	return outcome, err
}

func (s *CartService) addProduct(ctx context.Context, cart domain.Cart, productID int64) (domain.Cart, Outcome, error) {
	line, ok := cart.Find(productID)
	if !ok {
		product, err := s.inventory.GetProduct(ctx, productID)
		if err != nil {
			return cart, OutcomeNone, fmt.Errorf("%w: inventory.GetProduct: %w", ErrInventory, err)
		}

		stock, err := s.inventory.GetStock(ctx, productID)
		if err != nil {
			return cart, OutcomeNone, fmt.Errorf("%w: inventory.GetStock: %w", ErrInventory, err)
		}

		if stock.Amount <= 0 {
			return cart, OutcomeNone, ErrOutOfStock
		}

		return cart.WithLine(domain.CartLine{Product: product, Amount: 1}), OutcomeProductAdded, nil
	}

	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		return cart, OutcomeNone, fmt.Errorf("%w: inventory.GetStock: %w", ErrInventory, err)
	}

	if stock.Amount <= line.Amount {
		return cart, OutcomeNone, ErrOutOfStock
	}

	return cart.WithAmount(productID, line.Amount+1), OutcomeAmountIncreased, nil
}

func (s *CartService) RemoveProduct(ctx context.Context, productID int64) (Outcome, error) {
	outcome, err := s.mutate(ctx, func(cart domain.Cart) (domain.Cart, Outcome, error) {
		if !cart.Contains(productID) {
			return cart, OutcomeNone, ErrProductNotInCart
		}
		return cart.Without(productID), OutcomeProductRemoved, nil
	})
	s.report(ctx, OpRemove, outcome, err, "productID", productID)
	return outcome, err
}

func (s *CartService) UpdateProductAmount(ctx context.Context, req UpdateAmount) (Outcome, error) {
	outcome, err := s.updateProductAmount(ctx, req)
	s.report(ctx, OpUpdate, outcome, err, "productID", req.ProductID, "amount", req.Amount)
	return outcome, err
}

func (s *CartService) updateProductAmount(ctx context.Context, req UpdateAmount) (Outcome, error) {
	if req.Amount <= 0 {
		return OutcomeNone, ErrInvalidQuantity
	}

	return s.mutate(ctx, func(cart domain.Cart) (domain.Cart, Outcome, error) {
		stock, err := s.inventory.GetStock(ctx, req.ProductID)
		if err != nil {
			return cart, OutcomeNone, fmt.Errorf("%w: inventory.GetStock: %w", ErrInventory, err)
		}

		if stock.Amount-req.Amount < 0 {
			return cart, OutcomeNone, ErrOutOfStock
		}

		if !cart.Contains(req.ProductID) {
			return cart, OutcomeNone, ErrProductNotInCart
		}

		return cart.WithAmount(req.ProductID, req.Amount), OutcomeAmountUpdated, nil
	})
}

// mutate runs fn against a fresh snapshot and installs its result. When another
// operation installed a cart in the meantime, fn is run again from scratch.
func (s *CartService) mutate(ctx context.Context, fn func(domain.Cart) (domain.Cart, Outcome, error)) (Outcome, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		snap := s.store.Current()

		next, outcome, err := fn(snap.Cart)
		if err != nil {
			return OutcomeNone, err
		}

		err = s.store.Replace(ctx, snap, next)
		if errors.Is(err, store.ErrConflict) {
			s.logger.DebugContext(ctx, "cart replaced concurrently, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return OutcomeNone, fmt.Errorf("%w: store.Replace: %w", ErrPersistence, err)
		}

		return outcome, nil
	}

	return OutcomeNone, ErrConflict
}

func (s *CartService) report(ctx context.Context, op Op, outcome Outcome, err error, attrs ...any) {
	attrs = append(attrs, "op", string(op))

	if err != nil {
		level := slog.LevelInfo
		if errors.Is(err, ErrInventory) || errors.Is(err, ErrPersistence) || errors.Is(err, ErrConflict) {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "cart operation rejected", append(attrs, "error", err)...)
	} else {
		s.logger.DebugContext(ctx, "cart operation applied", attrs...)
	}

	if notice, ok := Describe(op, outcome, err); ok {
		s.notifier.Notify(ctx, notice.Message, notice.Severity)
	}
}
