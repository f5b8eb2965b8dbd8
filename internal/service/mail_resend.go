package service

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendMailSender delivers PIN emails through the Resend API. Used instead
// of SMTP when RESEND_API_KEY is configured.
type ResendMailSender struct {
	Client  *resend.Client
	From    string
	AppName string
}

func NewResendMailSender(apiKey, from, appName string) *ResendMailSender {
	return &ResendMailSender{
		Client:  resend.NewClient(apiKey),
		From:    from,
		AppName: appName,
	}
}

func (s *ResendMailSender) SendResetPin(ctx context.Context, email string, pin string, requestID string, expiresIn time.Duration) error {
	subject := fmt.Sprintf("%s · Password recovery", s.AppName)
	html := fmt.Sprintf(`
		<p>We received a request to reset the password for your account.</p>
		<p>Your PIN is: <b style="font-size:20px">%s</b></p>
		<p>Request id: <code>%s</code></p>
		<p>This code expires in %d minutes.</p>
		<p>If this wasn't you, ignore this email.</p>
	`, pin, requestID, int(expiresIn.Minutes()))
	return s.send(ctx, email, subject, html)
}

func (s *ResendMailSender) SendResetPinAgain(ctx context.Context, email string, pin string, requestID string) error {
	subject := fmt.Sprintf("%s · New recovery PIN", s.AppName)
	html := fmt.Sprintf(`
		<p>Your new PIN is: <b style="font-size:20px">%s</b></p>
		<p>Request id: <code>%s</code></p>
	`, pin, requestID)
	return s.send(ctx, email, subject, html)
}

func (s *ResendMailSender) send(ctx context.Context, to string, subject string, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.Client.Emails.Send(params); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
