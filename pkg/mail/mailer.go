package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	stdmail "net/mail"
	"net/smtp"
	"strings"
	"time"
)

// ErrDisabled signals that SMTP delivery is disabled via configuration.
var ErrDisabled = errors.New("mail: delivery disabled")

// Message represents one outbound notification email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends a message to a single recipient and reports the outcome.
// Retrying failed sends is the caller's responsibility.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSettings capture the runtime configuration for the SMTP mailer.
type SMTPSettings struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
	Timeout  time.Duration
}

type smtpMailer struct {
	cfg    SMTPSettings
	dialFn dialFunc
	authFn authFunc
}

// NewSMTPMailer builds an SMTP-backed Mailer from the supplied settings.
func NewSMTPMailer(cfg SMTPSettings) (Mailer, error) {
	if cfg.Enabled {
		if strings.TrimSpace(cfg.Host) == "" {
			return nil, errors.New("mail: host is required when enabled")
		}
		if cfg.Port == 0 {
			return nil, errors.New("mail: port is required when enabled")
		}
		if strings.TrimSpace(cfg.From) == "" {
			return nil, errors.New("mail: from address is required when enabled")
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &smtpMailer{cfg: cfg, dialFn: defaultDial, authFn: defaultAuth}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	to := strings.TrimSpace(msg.To)
	if to == "" {
		return errors.New("mail: recipient address is required")
	}
	if _, err := stdmail.ParseAddress(to); err != nil {
		return fmt.Errorf("mail: invalid recipient address %q: %w", to, err)
	}
	if _, err := stdmail.ParseAddress(m.cfg.From); err != nil {
		return fmt.Errorf("mail: invalid from address: %w", err)
	}

	conn, client, err := m.dialFn(ctx, m.cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	if err := m.authFn(client, m.cfg); err != nil {
		return err
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("mail: mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("mail: rcpt to %s: %w", to, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: data command: %w", err)
	}
	if _, err := io.WriteString(wc, render(m.cfg.From, to, msg.Subject, msg.HTML)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("mail: write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("mail: close data writer: %w", err)
	}

	return client.Quit()
}

type smtpClient interface {
	Mail(string) error
	Rcpt(string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
	StartTLS(*tls.Config) error
	Auth(smtp.Auth) error
	Extension(string) (bool, string)
}

type dialFunc func(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error)
type authFunc func(client smtpClient, cfg SMTPSettings) error

func defaultDial(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error) {
	address := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dialer := &net.Dialer{Timeout: cfg.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if cfg.UseTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", address, &tls.Config{ServerName: cfg.Host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", address)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("mail: dial %s: %w", address, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("mail: new client: %w", err)
	}

	if !cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				_ = client.Close()
				_ = conn.Close()
				return nil, nil, fmt.Errorf("mail: start tls: %w", err)
			}
		}
	}

	return conn, client, nil
}

func defaultAuth(client smtpClient, cfg SMTPSettings) error {
	if strings.TrimSpace(cfg.Username) == "" {
		return nil
	}
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mail: auth: %w", err)
	}
	return nil
}

func render(from, to, subject, html string) string {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + sanitizeHeader(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
	}
	return strings.Join(headers, "\r\n") + html
}

func sanitizeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.ReplaceAll(value, "\n", " ")
}

// Discard is a Mailer that accepts every message without delivering it.
// Used when SMTP is disabled and in tests.
type Discard struct{}

func (Discard) Send(context.Context, Message) error { return nil }
