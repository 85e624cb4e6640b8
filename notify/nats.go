package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type natsSink struct {
	publisher Publisher
	prefix    string
	logger    *zap.Logger
}

// NewNatsSink publishes each notice as JSON on "<prefix>.<kind>". Publish only buffers,
// delivery failures are logged and dropped.
func NewNatsSink(publisher Publisher, prefix string, logger *zap.Logger) Sink {
	return &natsSink{
		publisher: publisher,
		prefix:    prefix,
		logger:    logger,
	}
}

func (s *natsSink) Notify(_ context.Context, notice models.Notice) {
	data, err := json.Marshal(notice)
	if err != nil {
		s.logger.Error("failed to marshal notice", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.%s", s.prefix, notice.Kind)
	if err = s.publisher.Publish(subject, data); err != nil {
		s.logger.Error("failed to publish notice", zap.String("subject", subject), zap.Error(err))
	}
}
