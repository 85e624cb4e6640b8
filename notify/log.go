package notify

import (
	"context"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

type logSink struct {
	logger *zap.Logger
}

// NewLogSink writes notices to the structured log.
func NewLogSink(logger *zap.Logger) Sink {
	return &logSink{logger: logger}
}

func (s *logSink) Notify(_ context.Context, notice models.Notice) {
	s.logger.Info("cart notice",
		zap.String("kind", string(notice.Kind)),
		zap.Int64("product_id", notice.ProductID),
		zap.String("message", notice.Message))
}
