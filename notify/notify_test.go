package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

func TestCatalogMessage(t *testing.T) {
	tests := []struct {
		locale string
		kind   enum.NoticeKind
		want   string
	}{
		{"pt-BR", enum.NoticeKindRemoveFailed, "Erro na remoção do produto"},
		{"en", enum.NoticeKindInsufficientStock, "Requested quantity is out of stock"},
		{"fr", enum.NoticeKindAddFailed, "Erro na adição do produto"},
		{"en", enum.NoticeKind("mystery"), "mystery"},
	}
	for _, tt := range tests {
		if got := DefaultCatalog.Message(tt.locale, tt.kind); got != tt.want {
			t.Errorf("Message(%q, %q) = %q, want %q", tt.locale, tt.kind, got, tt.want)
		}
	}
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return f.err
}

func TestNatsSinkPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewNatsSink(pub, "cart.notice", zaptest.NewLogger(t))

	sink.Notify(context.Background(), models.NewNotice(enum.NoticeKindInsufficientStock, 3, "fora de estoque"))

	if len(pub.subjects) != 1 || pub.subjects[0] != "cart.notice.insufficient_stock" {
		t.Fatalf("unexpected subjects %v", pub.subjects)
	}
	var got models.Notice
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatal(err)
	}
	if got.ProductID != 3 || got.Message != "fora de estoque" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestNatsSinkSwallowsPublishErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	sink := NewNatsSink(pub, "cart.notice", zap.New(core))

	sink.Notify(context.Background(), models.NewNotice(enum.NoticeKindAddFailed, 1, "x"))

	if logs.FilterMessage("failed to publish notice").Len() != 1 {
		t.Fatalf("expected publish failure to be logged")
	}
}

func TestLogSinkAndFanout(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var seen []enum.NoticeKind
	sink := Fanout(
		NewLogSink(zap.New(core)),
		SinkFunc(func(_ context.Context, n models.Notice) { seen = append(seen, n.Kind) }),
	)

	sink.Notify(context.Background(), models.NewNotice(enum.NoticeKindUpdateFailed, 7, "x"))

	if len(seen) != 1 || seen[0] != enum.NoticeKindUpdateFailed {
		t.Fatalf("fanout did not reach every sink: %v", seen)
	}
	entries := logs.FilterMessage("cart notice").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["product_id"] != int64(7) {
		t.Fatalf("unexpected fields %v", entries[0].ContextMap())
	}
}
