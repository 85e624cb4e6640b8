package models

import "github.com/stripe/stripe-go/v79"

// Product is a catalogue entry as served by the inventory API. Inside a cart it doubles as
// the line item, Amount being the quantity held.
type Product struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Price    float64         `json:"price"`
	Image    string          `json:"image"`
	Currency stripe.Currency `json:"currency,omitempty"`
	Amount   int             `json:"amount"`
}

func NewProduct() *Product {
	return new(Product)
}
