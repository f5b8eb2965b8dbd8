package service

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// SMTPMailSender delivers PIN emails over plain SMTP. gomail's DialAndSend
// has no deadline of its own, so every send is raced against the request
// context plus a configured ceiling.
type SMTPMailSender struct {
	Dialer  *gomail.Dialer
	From    string
	AppName string
	Timeout time.Duration
}

func NewSMTPMailSender(host string, port int, username, password, from, appName string, timeout time.Duration) *SMTPMailSender {
	return &SMTPMailSender{
		Dialer:  gomail.NewDialer(host, port, username, password),
		From:    from,
		AppName: appName,
		Timeout: timeout,
	}
}

func (s *SMTPMailSender) SendResetPin(ctx context.Context, email string, pin string, requestID string, expiresIn time.Duration) error {
	subject := fmt.Sprintf("%s · Password recovery", s.AppName)
	body := fmt.Sprintf(`
		<p>We received a request to reset the password for your account.</p>
		<p>Your PIN is: <b style="font-size:20px">%s</b></p>
		<p>Request id: <code>%s</code></p>
		<p>This code expires in %d minutes.</p>
		<p>If this wasn't you, ignore this email.</p>
	`, pin, requestID, int(expiresIn.Minutes()))
	return s.send(ctx, email, subject, body)
}

func (s *SMTPMailSender) SendResetPinAgain(ctx context.Context, email string, pin string, requestID string) error {
	subject := fmt.Sprintf("%s · New recovery PIN", s.AppName)
	body := fmt.Sprintf(`
		<p>Your new PIN is: <b style="font-size:20px">%s</b></p>
		<p>Request id: <code>%s</code></p>
	`, pin, requestID)
	return s.send(ctx, email, subject, body)
}

func (s *SMTPMailSender) send(ctx context.Context, to string, subject string, html string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", s.From)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", html)

	timeout := s.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Dialer.DialAndSend(message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}
