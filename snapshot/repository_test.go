package snapshot

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gofalre.io/storefront/models"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cart := models.Cart{
		{ID: 2, Title: "Tênis VR Caminhada", Price: 139.9, Image: "https://img/2.jpg", Amount: 3},
		{ID: 1, Title: "Tênis de Caminhada", Price: 179.9, Amount: 1},
	}

	raw, err := Encode(cart)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(cart, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeNilCartIsEmptyArray(t *testing.T) {
	raw, err := Encode(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw != "[]" {
		t.Fatalf("got %q", raw)
	}
}

func TestDecodeRejectsCorruptSnapshots(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":     "{oops",
		"object":       `{"id":1}`,
		"duplicate id": `[{"id":1,"amount":1},{"id":1,"amount":2}]`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(raw); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestDecodeNullIsEmptyCart(t *testing.T) {
	cart, err := Decode("null")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cart == nil || len(cart) != 0 {
		t.Fatalf("expected empty cart, got %#v", cart)
	}
}
