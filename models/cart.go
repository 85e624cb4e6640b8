package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v79"

	"gofalre.io/storefront/models/enum"
)

var ErrCurrencyMismatch = errors.New("cart holds products priced in another currency")

// Cart is the ordered list of line items. Ids are unique and insertion order is the
// display order. Every method returns a new slice and leaves the receiver untouched.
type Cart []Product

func NewCart() Cart {
	return Cart{}
}

func (c Cart) Lookup(productID int64) (Product, enum.Lookup) {
	for _, p := range c {
		if p.ID == productID {
			return p, enum.LookupFound
		}
	}
	return Product{}, enum.LookupNotFound
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) Append(p Product) Cart {
	out := make(Cart, 0, len(c)+1)
	out = append(out, c...)
	return append(out, p)
}

func (c Cart) Without(productID int64) Cart {
	out := make(Cart, 0, len(c))
	for _, p := range c {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out
}

func (c Cart) WithAmount(productID int64, amount int) Cart {
	out := c.Clone()
	for i := range out {
		if out[i].ID == productID {
			out[i].Amount = amount
		}
	}
	return out
}

// Count is the number of units across all line items.
func (c Cart) Count() int {
	var n int
	for _, p := range c {
		n += p.Amount
	}
	return n
}

func (c Cart) Subtotal() float64 {
	var total float64
	for _, p := range c {
		total += p.Price * float64(p.Amount)
	}
	return total
}

// CheckoutLineItems converts the cart into stripe checkout line items priced in currency.
// Products carrying their own currency must match it.
func (c Cart) CheckoutLineItems(currency stripe.Currency) ([]*stripe.CheckoutSessionLineItemParams, error) {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(c))
	for _, p := range c {
		if p.Currency != "" && p.Currency != currency {
			return nil, fmt.Errorf("product %d priced in %s: %w", p.ID, p.Currency, ErrCurrencyMismatch)
		}

		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(p.Title),
		}
		if p.Image != "" {
			productData.Images = stripe.StringSlice([]string{p.Image})
		}

		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(currency)),
				UnitAmount:  stripe.Int64(unitAmount(p.Price, currency)),
				ProductData: productData,
			},
			Quantity: stripe.Int64(int64(p.Amount)),
		})
	}
	return items, nil
}

// zero-decimal currencies are charged in whole units
var zeroDecimal = map[stripe.Currency]bool{
	stripe.CurrencyBIF: true,
	stripe.CurrencyCLP: true,
	stripe.CurrencyDJF: true,
	stripe.CurrencyGNF: true,
	stripe.CurrencyJPY: true,
	stripe.CurrencyKMF: true,
	stripe.CurrencyKRW: true,
	stripe.CurrencyMGA: true,
	stripe.CurrencyPYG: true,
	stripe.CurrencyRWF: true,
	stripe.CurrencyUGX: true,
	stripe.CurrencyVND: true,
	stripe.CurrencyVUV: true,
	stripe.CurrencyXAF: true,
	stripe.CurrencyXOF: true,
	stripe.CurrencyXPF: true,
}

func unitAmount(price float64, currency stripe.Currency) int64 {
	if zeroDecimal[currency] {
		return int64(math.Round(price))
	}
	return int64(math.Round(price * 100))
}
