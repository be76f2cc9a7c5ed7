package domain

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Cart is an ordered set of lines keyed by product id. Methods never modify
// the receiver; mutations return a new Cart.
type Cart struct {
	Lines []CartLine
}

type CartLine struct {
	Product
	Amount int `json:"amount"`
}

func NewCart(lines ...CartLine) Cart {
	return Cart{Lines: slices.Clone(lines)}
}

func (c Cart) Len() int {
	return len(c.Lines)
}

func (c Cart) Clone() Cart {
	return Cart{Lines: slices.Clone(c.Lines)}
}

func (c Cart) Find(productID int64) (CartLine, bool) {
	i := c.index(productID)
	if i < 0 {
		return CartLine{}, false
	}
	return c.Lines[i], true
}

func (c Cart) Contains(productID int64) bool {
	return c.index(productID) >= 0
}

// WithLine appends line at the end of the cart.
// The caller guarantees line.ID is not yet present.
func (c Cart) WithLine(line CartLine) Cart {
	lines := make([]CartLine, 0, len(c.Lines)+1)
	lines = append(lines, c.Lines...)
	lines = append(lines, line)
	return Cart{Lines: lines}
}

// WithAmount sets the amount of the line for productID, leaving the others as they are.
func (c Cart) WithAmount(productID int64, amount int) Cart {
	next := c.Clone()
	if i := next.index(productID); i >= 0 {
		next.Lines[i].Amount = amount
	}
	return next
}

func (c Cart) Without(productID int64) Cart {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.ID != productID {
			lines = append(lines, line)
		}
	}
	return Cart{Lines: lines}
}

func (c Cart) Total(unit currency.Unit) Money {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Amount))))
	}
	return Money{Amount: total, Currency: unit}
}

// Validate checks that product ids are unique and every amount is positive.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c.Lines))
	for _, line := range c.Lines {
		if _, ok := seen[line.ID]; ok {
			return fmt.Errorf("product[%d] appears more than once", line.ID)
		}
		seen[line.ID] = struct{}{}

		if line.Amount < 1 {
			return fmt.Errorf("product[%d] amount[%d] is not positive", line.ID, line.Amount)
		}
	}
	return nil
}

func (c Cart) MarshalJSON() ([]byte, error) {
	if c.Lines == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Lines)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.Lines = lines
	return nil
}

func (c Cart) index(productID int64) int {
	return slices.IndexFunc(c.Lines, func(line CartLine) bool {
		return line.ID == productID
	})
}

// EncodeCart serializes the cart as a JSON array of lines in cart order.
func EncodeCart(c Cart) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

func DecodeCart(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Cart{}, fmt.Errorf("c.Validate: %w", err)
	}

	return c, nil
}
