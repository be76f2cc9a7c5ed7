package domain_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/cartkeeper/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestCart_Mutations(t *testing.T) {
	a, b, c := line(1, 1), line(2, 3), line(3, 2)
	cart := domain.NewCart(a, b)

	added := cart.WithLine(c)
	assert.Equal(t, 2, cart.Len(), "receiver must stay untouched")
	assert.Equal(t, []int64{1, 2, 3}, ids(added))

	updated := added.WithAmount(2, 7)
	got, ok := updated.Find(2)
	require.True(t, ok)
	assert.Equal(t, 7, got.Amount)

	before, _ := added.Find(2)
	assert.Equal(t, 3, before.Amount, "receiver must stay untouched")

	removed := updated.Without(2)
	assert.Equal(t, []int64{1, 3}, ids(removed))
	assert.False(t, removed.Contains(2))
	assert.True(t, updated.Contains(2))

	same := updated.WithAmount(99, 5)
	assert.Empty(t, cmp.Diff(updated, same, decimalComparer()))

	_, ok = cart.Find(99)
	assert.False(t, ok)
}

func TestCart_Total(t *testing.T) {
	cart := domain.NewCart(
		domain.CartLine{Product: domain.Product{ID: 1, Price: decimal.RequireFromString("10.50")}, Amount: 2},
		domain.CartLine{Product: domain.Product{ID: 2, Price: decimal.RequireFromString("0.25")}, Amount: 4},
	)

	total := cart.Total(currency.BRL)

	assert.True(t, decimal.RequireFromString("22").Equal(total.Amount), total.Amount.String())
	assert.Equal(t, currency.BRL, total.Currency)
	assert.Equal(t, "BRL 22.00", total.String())

	empty := domain.NewCart().Total(currency.USD)
	assert.True(t, empty.Amount.IsZero())
}

func TestCart_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cart      domain.Cart
		wantError string
	}{
		{
			name: "unique ids positive amounts: ok",
			cart: domain.NewCart(line(1, 1), line(2, 5)),
		},
		{
			name: "empty cart: ok",
			cart: domain.NewCart(),
		},
		{
			name:      "duplicate id: error",
			cart:      domain.NewCart(line(1, 1), line(1, 2)),
			wantError: "product[1] appears more than once",
		},
		{
			name:      "zero amount: error",
			cart:      domain.NewCart(line(4, 0)),
			wantError: "product[4] amount[0] is not positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cart.Validate()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEncodeDecodeCart_Idempotent(t *testing.T) {
	cart := domain.NewCart()
	for i := range 5 {
		cart = cart.WithLine(domain.CartLine{
			Product: domain.Product{
				ID:    int64(i + 1),
				Title: gofakeit.ProductName(),
				Price: decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
				Image: gofakeit.URL(),
			},
			Amount: gofakeit.IntRange(1, 9),
		})
	}

	blob, err := domain.EncodeCart(cart)
	require.NoError(t, err)

	decoded, err := domain.DecodeCart(blob)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(cart, decoded, decimalComparer()))

	again, err := domain.EncodeCart(decoded)
	require.NoError(t, err)
	assert.Equal(t, blob, again)
}

func TestEncodeCart_Shape(t *testing.T) {
	blob, err := domain.EncodeCart(domain.Cart{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(blob))

	blob, err = domain.EncodeCart(domain.NewCart(domain.CartLine{
		Product: domain.Product{ID: 42, Title: "Sneaker", Price: decimal.RequireFromString("179.9"), Image: "a.jpg"},
		Amount:  2,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":42,"title":"Sneaker","price":"179.9","image":"a.jpg","amount":2}]`, string(blob))
}

func TestDecodeCart(t *testing.T) {
	tests := []struct {
		name      string
		blob      string
		wantIDs   []int64
		wantError bool
	}{
		{
			name:    "numeric price: ok",
			blob:    `[{"id":1,"title":"Tenis","price":139.9,"image":"x.jpg","amount":1}]`,
			wantIDs: []int64{1},
		},
		{
			name:    "empty array: ok",
			blob:    `[]`,
			wantIDs: nil,
		},
		{
			name:    "null: empty cart",
			blob:    `null`,
			wantIDs: nil,
		},
		{
			name:      "not json: error",
			blob:      `{{{`,
			wantError: true,
		},
		{
			name:      "object instead of array: error",
			blob:      `{"id":1}`,
			wantError: true,
		},
		{
			name:      "missing amount: error",
			blob:      `[{"id":1,"title":"Tenis","price":1}]`,
			wantError: true,
		},
		{
			name:      "duplicate ids: error",
			blob:      `[{"id":1,"amount":1},{"id":1,"amount":2}]`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := domain.DecodeCart([]byte(tt.blob))
			if tt.wantError {
				require.Error(t, err)
				assert.Zero(t, cart.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(cart))
		})
	}
}

func line(id int64, amount int) domain.CartLine {
	return domain.CartLine{
		Product: domain.Product{
			ID:    id,
			Title: gofakeit.ProductName(),
			Price: decimal.NewFromFloat(gofakeit.Price(1, 100)),
			Image: gofakeit.URL(),
		},
		Amount: amount,
	}
}

func ids(cart domain.Cart) []int64 {
	var result []int64
	for _, l := range cart.Lines {
		result = append(result, l.ID)
	}
	return result
}

func decimalComparer() cmp.Option {
	return cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})
}
