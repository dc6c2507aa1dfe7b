package service

import (
	"context"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"sales_bot/internal/storage"
)

// LogSender writes notifications to the log instead of delivering them. It
// stands in until a messaging platform sender is wired.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender returns a LogSender; nil logger means no output.
func NewLogSender(logger *zap.SugaredLogger) *LogSender {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LogSender{log: logger}
}

// Send logs the notification. It never fails.
func (s *LogSender) Send(ctx context.Context, userID int64, ad storage.Ad) error {
	s.log.Infow("notification: new ad matches saved search",
		"user_id", userID,
		"ad_id", ad.ID,
		"price", humanize.Comma(ad.Price),
		"text", RenderNotice(ad))
	return nil
}
