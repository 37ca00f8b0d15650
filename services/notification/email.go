package notification

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender delivers plain-text mail through an SMTP relay.
type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	sendMail sendMailFunc
}

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{Host: host, Port: port, User: user, Password: password, From: user, sendMail: smtp.SendMail}
}

func (e *EmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if e.Host == "" {
		return fmt.Errorf("email: %w", ErrNotConfigured)
	}
	if to == "" {
		return fmt.Errorf("email: %w", ErrNoRecipient)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if e.User != "" {
		auth = smtp.PlainAuth("", e.User, e.Password, e.Host)
	}

	var msg strings.Builder
	msg.WriteString("From: " + e.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	addr := net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	if err := e.sendMail(addr, auth, e.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("email: send to %s: %w", to, err)
	}
	return nil
}
