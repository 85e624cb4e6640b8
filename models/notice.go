package models

import (
	"time"

	"gofalre.io/storefront/models/enum"
)

// Notice is a user-facing signal produced by a failed cart operation.
type Notice struct {
	Kind      enum.NoticeKind `json:"kind"`
	ProductID int64           `json:"product_id"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewNotice(kind enum.NoticeKind, productID int64, message string) Notice {
	return Notice{
		Kind:      kind,
		ProductID: productID,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
