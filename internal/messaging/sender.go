// Package messaging delivers short text messages to client phone numbers.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/pkg/utils"
)

// ErrEmptyRecipient is returned when Send is called without a phone number.
var ErrEmptyRecipient = errors.New("recipient phone number is empty")

// Sender sends one message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// LogSender writes messages to the log instead of delivering them.
// It is used when no SMS gateway is configured.
type LogSender struct{}

// NewLogSender creates a new LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrEmptyRecipient
	}
	utils.LogInfo("Message not delivered, no SMS gateway configured", map[string]interface{}{
		"to":   to,
		"body": body,
	})
	return nil
}

// RetryingSender retries a failed send up to MaxAttempts times in total.
type RetryingSender struct {
	next        Sender
	maxAttempts int
	backoff     time.Duration
}

// NewRetryingSender wraps next. maxAttempts below 1 is treated as 1.
func NewRetryingSender(next Sender, maxAttempts int, backoff time.Duration) *RetryingSender {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingSender{next: next, maxAttempts: maxAttempts, backoff: backoff}
}

func (s *RetryingSender) Send(ctx context.Context, to, body string) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.next.Send(ctx, to, body)
		if lastErr == nil || errors.Is(lastErr, ErrEmptyRecipient) {
			return lastErr
		}
		if attempt == s.maxAttempts {
			break
		}
		utils.LogWarn(lastErr, "Send failed, retrying", map[string]interface{}{"to": to, "attempt": attempt})

		select {
		case <-ctx.Done():
			return fmt.Errorf("send to %s aborted after %d attempt(s): %w", to, attempt, ctx.Err())
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("send to %s failed after %d attempt(s): %w", to, s.maxAttempts, lastErr)
}
