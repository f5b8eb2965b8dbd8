package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMailSender is the development fallback used when no mail transport is
// configured. The log line stands in for the mailbox, so the PIN is printed;
// never wire this in production.
type LogMailSender struct {
	Logger *logrus.Logger
}

func (s *LogMailSender) SendResetPin(ctx context.Context, email string, pin string, requestID string, expiresIn time.Duration) error {
	s.log().WithFields(logrus.Fields{
		"to":         email,
		"pin":        pin,
		"request_id": requestID,
		"expires_in": expiresIn.String(),
	}).Warn("mail transport not configured, logging reset PIN instead")
	return nil
}

func (s *LogMailSender) SendResetPinAgain(ctx context.Context, email string, pin string, requestID string) error {
	s.log().WithFields(logrus.Fields{
		"to":         email,
		"pin":        pin,
		"request_id": requestID,
	}).Warn("mail transport not configured, logging resent PIN instead")
	return nil
}

func (s *LogMailSender) log() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
