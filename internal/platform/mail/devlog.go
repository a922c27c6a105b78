package mail

import (
	"context"
	"log/slog"
)

// DevLogSender is a Sender for local development that logs the certification
// link instead of dispatching a real mail.
type DevLogSender struct {
	logger *slog.Logger
}

// Ensure DevLogSender implements the Sender interface
var _ Sender = (*DevLogSender)(nil)

// NewDevLogSender creates a DevLogSender. If logger is nil, the default
// logger is used.
func NewDevLogSender(logger *slog.Logger) *DevLogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &DevLogSender{logger: logger.With("component", "mail_dev")}
}

// SendCertification logs the certification link at INFO level.
func (s *DevLogSender) SendCertification(ctx context.Context, recipient, screenName, certificationLink string) error {
	s.logger.InfoContext(ctx, "certification mail issued",
		"recipient", recipient,
		"screen_name", screenName,
		"certification_link", certificationLink,
	)
	return nil
}
