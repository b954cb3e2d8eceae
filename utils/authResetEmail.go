package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends password reset codes.
type Mailer interface {
	SendResetCode(email, code string) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, pass), from: user}
}

func (m *SMTPMailer) SendResetCode(email, code string) error {
	if err := m.dialer.DialAndSend(ResetCodeMessage(m.from, email, code)); err != nil {
		return fmt.Errorf("failed to send reset code: %w", err)
	}
	return nil
}

// ResetCodeMessage builds the plain text and HTML reset code email.
func ResetCodeMessage(from, to, code string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password Reset Code")
	m.SetBody("text/plain", "Your password reset code is: "+code)

	htmlBody := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Password Reset Code</title>
		<style>
			body { font-family: Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; }
			.card { background-color: #ffffff; margin: 24px auto; padding: 24px; border-radius: 6px; max-width: 560px; }
			.code { font-size: 22px; letter-spacing: 4px; font-weight: bold; color: #0b7a75; }
		</style>
	</head>
	<body>
		<div class="card">
			<h2>Clinic account password reset</h2>
			<p>Use this code to choose a new password. It expires in 15 minutes.</p>
			<p class="code">` + code + `</p>
			<p>If you did not ask for a reset you can ignore this message.</p>
		</div>
	</body>
	</html>
	`
	m.AddAlternative("text/html", htmlBody)
	return m
}
