// Package notify delivers user-facing cart notices.
package notify

import (
	"context"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

// Sink receives notices. Implementations must not block the cart operation that emits them.
type Sink interface {
	Notify(ctx context.Context, notice models.Notice)
}

type SinkFunc func(ctx context.Context, notice models.Notice)

func (f SinkFunc) Notify(ctx context.Context, notice models.Notice) { f(ctx, notice) }

type fanout []Sink

// Fanout delivers every notice to each sink in order.
func Fanout(sinks ...Sink) Sink {
	return fanout(sinks)
}

func (f fanout) Notify(ctx context.Context, notice models.Notice) {
	for _, s := range f {
		s.Notify(ctx, notice)
	}
}

const DefaultLocale = "pt-BR"

// Catalog maps a locale to the literal message shown for each notice kind.
type Catalog map[string]map[enum.NoticeKind]string

var DefaultCatalog = Catalog{
	"pt-BR": {
		enum.NoticeKindAddFailed:         "Erro na adição do produto",
		enum.NoticeKindRemoveFailed:      "Erro na remoção do produto",
		enum.NoticeKindUpdateFailed:      "Erro na alteração de quantidade do produto",
		enum.NoticeKindInsufficientStock: "Quantidade solicitada fora de estoque",
	},
	"en": {
		enum.NoticeKindAddFailed:         "Could not add the product",
		enum.NoticeKindRemoveFailed:      "Could not remove the product",
		enum.NoticeKindUpdateFailed:      "Could not change the product quantity",
		enum.NoticeKindInsufficientStock: "Requested quantity is out of stock",
	},
}

// Message returns the text for kind in locale, falling back to DefaultLocale and then to
// the kind itself.
func (c Catalog) Message(locale string, kind enum.NoticeKind) string {
	if msg, ok := c[locale][kind]; ok {
		return msg
	}
	if msg, ok := c[DefaultLocale][kind]; ok {
		return msg
	}
	return string(kind)
}
