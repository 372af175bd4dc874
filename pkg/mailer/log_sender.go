package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
)

// LogSender writes messages to the log instead of delivering them.
// Used in development when no Postmark token is configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(_ context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Name)
	}
	logger.Info("Email not delivered (log sender)", map[string]interface{}{
		"to":          msg.To,
		"subject":     msg.Subject,
		"tag":         msg.Tag,
		"attachments": names,
	})
	return fmt.Sprintf("log-%d", time.Now().UnixNano()), nil
}
