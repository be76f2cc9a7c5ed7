package port

import (
	"context"

	"github.com/nikolayk812/cartkeeper/internal/domain"
)

// CartStorage holds one serialized cart in a single named slot.
type CartStorage interface {
	// Load returns found=false when the slot has never been written.
	Load(ctx context.Context) (blob []byte, found bool, err error)
	Save(ctx context.Context, blob []byte) error
}

type Inventory interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
}

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notifier relays a user-facing message. Delivery failures stay inside the implementation.
type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}
