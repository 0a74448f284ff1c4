package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"bpoc/internal/config"
)

type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// SMTP sends mail through an authenticated relay. Port 465 uses implicit TLS.
type SMTP struct {
	cfg      config.SMTP
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	sendTLS  func(cfg config.SMTP, a smtp.Auth, to string, msg []byte) error
}

func NewSMTP(cfg config.SMTP) *SMTP {
	return &SMTP{cfg: cfg, sendMail: smtp.SendMail, sendTLS: sendImplicitTLS}
}

func (m *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.cfg.Host == "" {
		return errors.New("SMTP not configured")
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return errors.New("invalid header value")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	raw := m.compose(msg)
	if m.cfg.Port == "465" {
		return m.sendTLS(m.cfg, auth, msg.To, raw)
	}
	if err := m.sendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTP) compose(msg Message) []byte {
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}
	return []byte("From: \"BPOC\" <" + m.cfg.From + ">\r\n" +
		"To: " + msg.To + "\r\n" +
		"Subject: " + msg.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: " + contentType + "; charset=\"utf-8\"\r\n\r\n" +
		msg.Body + "\r\n")
}

func sendImplicitTLS(cfg config.SMTP, auth smtp.Auth, to string, msg []byte) error {
	addr := cfg.Host + ":" + cfg.Port
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	return wc.Close()
}
