// Package mailer delivers account emails: verification codes, password reset
// codes and admin invitations.
package mailer

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendVerificationCode(to, code string) error
	SendPasswordResetCode(to, code string) error
	SendPasswordChanged(to string) error
	SendInvitation(to, temporaryPassword string) error
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	FrontendURL string
}

type SMTPMailer struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

func (m *SMTPMailer) SendVerificationCode(to, code string) error {
	subject := "Verify your Applibry account"
	plain := fmt.Sprintf("Welcome to Applibry!\n\nYour verification code is %s.\nIt expires in 24 hours.\n", code)
	html := fmt.Sprintf(`<html><body>
<h2>Welcome to Applibry!</h2>
<p>Your verification code is <strong>%s</strong>.</p>
<p>It expires in 24 hours. If you didn't create an account, you can ignore this email.</p>
</body></html>`, code)
	return m.send(to, subject, plain, html)
}

func (m *SMTPMailer) SendPasswordResetCode(to, code string) error {
	subject := "Reset your Applibry password"
	plain := fmt.Sprintf("We received a request to reset your password.\n\nYour reset code is %s.\nIt expires in 30 minutes.\n", code)
	html := fmt.Sprintf(`<html><body>
<h2>Password reset</h2>
<p>Your reset code is <strong>%s</strong>. It expires in 30 minutes.</p>
<p>If you didn't request a reset, your password stays unchanged.</p>
</body></html>`, code)
	return m.send(to, subject, plain, html)
}

func (m *SMTPMailer) SendPasswordChanged(to string) error {
	subject := "Your Applibry password was changed"
	plain := "Your password has been changed. If this wasn't you, contact support immediately.\n"
	html := `<html><body><h2>Password changed</h2><p>If this wasn't you, contact support immediately.</p></body></html>`
	return m.send(to, subject, plain, html)
}

func (m *SMTPMailer) SendInvitation(to, temporaryPassword string) error {
	loginURL := m.config.FrontendURL + "/login"
	subject := "You've been invited to Applibry"
	plain := fmt.Sprintf("You have been invited to the Applibry admin.\n\nSign in at %s with\nusername: %s\ntemporary password: %s\n\nChange your password after signing in.\n",
		loginURL, to, temporaryPassword)
	html := fmt.Sprintf(`<html><body>
<h2>You've been invited to Applibry</h2>
<p>Sign in at <a href="%s">%s</a> with username <strong>%s</strong> and temporary password <strong>%s</strong>.</p>
<p>Change your password after signing in.</p>
</body></html>`, loginURL, loginURL, to, temporaryPassword)
	return m.send(to, subject, plain, html)
}

func (m *SMTPMailer) send(to, subject, plain, html string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.config.FromAddress, m.config.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer stands in when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(to, _ string) error {
	slog.Warn("mail not configured, verification code not sent", "to", to)
	return nil
}

func (LogMailer) SendPasswordResetCode(to, _ string) error {
	slog.Warn("mail not configured, reset code not sent", "to", to)
	return nil
}

func (LogMailer) SendPasswordChanged(to string) error {
	slog.Warn("mail not configured, password change notice not sent", "to", to)
	return nil
}

func (LogMailer) SendInvitation(to, _ string) error {
	slog.Warn("mail not configured, invitation not sent", "to", to)
	return nil
}
