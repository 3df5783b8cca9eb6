package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail. Signup requires OTP delivery to
// succeed, so implementations must report send failures.
type Mailer interface {
	SendOTP(to, otp string) error
	SendStaffInvite(to, firstName, resetLink string) error
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer for the given SMTP server.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendOTP mails a one-time signup code.
func (m *SMTPMailer) SendOTP(to, otp string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/plain", fmt.Sprintf("Your verification code is %s. It is valid for 5 minutes.", otp))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// SendStaffInvite mails a set-password link to newly added staff.
func (m *SMTPMailer) SendStaffInvite(to, firstName, resetLink string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Set your staff password")
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Hi %s,</p><p>You have been added as staff. Please set your password using the link below:</p><p><a href=%q>Set Password</a></p><p>This link is valid for 24 hours.</p>",
		firstName, resetLink,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send invite mail: %w", err)
	}
	return nil
}
