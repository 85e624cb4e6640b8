package models

// Stock is the remote-authoritative available quantity for a product.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}
