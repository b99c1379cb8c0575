package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"maintenance-service/internal/logging"
	"maintenance-service/internal/utils"
	"maintenance-service/pkg/email"
)

// EmailSink mails critical events to the configured operations recipients.
// SMTP delivery is retried; transient relay hiccups shouldn't drop a
// critical alert digest.
type EmailSink struct {
	server     string
	port       int
	username   string
	password   string
	recipients []string
	logger     *logging.Logger
}

func NewEmailSink(server string, port int, username, password, recipients string, logger *logging.Logger) *EmailSink {
	var to []string
	for _, r := range strings.Split(recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &EmailSink{
		server:     server,
		port:       port,
		username:   username,
		password:   password,
		recipients: to,
		logger:     logger,
	}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, event string, payload []byte) error {
	if !criticalEvents[event] {
		return nil
	}
	if len(s.recipients) == 0 {
		return nil
	}
	subject := fmt.Sprintf("Maintenance alert: %s", event)
	return utils.Retry(ctx, s.logger, 3, 2*time.Second, func() error {
		return email.Send(s.server, s.port, s.username, s.password, s.recipients, subject, string(payload))
	})
}
