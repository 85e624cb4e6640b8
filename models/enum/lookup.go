package enum

// Lookup is the outcome of searching the cart for a product id.
type Lookup string

const (
	LookupFound    Lookup = "found"
	LookupNotFound Lookup = "not_found"
)
