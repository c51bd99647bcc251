package auth

import (
	"fmt"
	"net/smtp"

	"github.com/MohamedWael200/APi-eCommerce/internal/config"
	"github.com/sirupsen/logrus"
)

// Mailer delivers the signup verification code. Tests inject a recorder.
type Mailer interface {
	SendOTP(to, name, code string) error
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendOTP(to, name, code string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: E-commerce Platform Verification\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"Hello %s,\r\n\r\nYour verification code is: %s\r\n\r\nThe code expires shortly; if you did not sign up, ignore this email.\r\n",
		m.cfg.From, to, name, code)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}

	return nil
}

// Send delivers an HTML message, used for operational mail beyond the OTP
// flow.
func (m *SMTPMailer) Send(to, subject, html string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, html)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

// LogMailer is the development fallback when no SMTP host is configured: the
// code goes to the application log instead of an inbox.
type LogMailer struct {
	Log *logrus.Logger
}

func (m *LogMailer) SendOTP(to, name, code string) error {
	m.Log.WithFields(logrus.Fields{"to": to, "code": code}).Warn("SMTP not configured, OTP logged instead of mailed")
	return nil
}

func (m *LogMailer) Send(to, subject, html string) error {
	m.Log.WithFields(logrus.Fields{"to": to, "subject": subject}).Warn("SMTP not configured, mail logged instead of sent")
	return nil
}
