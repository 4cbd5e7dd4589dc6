package notify

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// attachmentBoundary separates MIME parts in multipart messages.
const attachmentBoundary = "complaintdesk-mime-boundary"

// Mailer sends notification mail over SMTP with STARTTLS.
type Mailer struct {
	Host string
	Port string
	User string
	Pass string

	// DialTimeout bounds the SMTP connection attempt so a slow transport
	// cannot stall a synchronous caller.
	DialTimeout time.Duration
}

// NewMailer creates an SMTP dispatcher with a 30 second dial timeout.
func NewMailer(host, port, user, pass string) *Mailer {
	return &Mailer{
		Host:        host,
		Port:        port,
		User:        user,
		Pass:        pass,
		DialTimeout: 30 * time.Second,
	}
}

// Dispatch attempts exactly one send to all recipients in a single message.
func (m *Mailer) Dispatch(ctx context.Context, recipients []string, n Notification) error {
	if len(recipients) == 0 {
		return nil
	}

	msg, err := m.buildMessage(recipients, n)
	if err != nil {
		return err
	}
	return m.send(ctx, recipients, msg)
}

// buildMessage constructs the MIME message. With attachments present the
// message becomes multipart/mixed with base64 file parts, mirroring what the
// reference mail transport produced.
func (m *Mailer) buildMessage(recipients []string, n Notification) ([]byte, error) {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.User))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(recipients, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", n.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if len(n.Attachments) == 0 {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(n.Body)
		msg.WriteString("\r\n")
		return []byte(msg.String()), nil
	}

	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", attachmentBoundary))

	msg.WriteString("--" + attachmentBoundary + "\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(n.Body)
	msg.WriteString("\r\n")

	for _, path := range n.Attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", path, err)
		}

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		msg.WriteString("--" + attachmentBoundary + "\r\n")
		msg.WriteString(fmt.Sprintf("Content-Type: %s\r\n", contentType))
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", filepath.Base(path)))

		encoded := base64.StdEncoding.EncodeToString(data)
		// Wrap at 76 characters per RFC 2045.
		for len(encoded) > 76 {
			msg.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		msg.WriteString(encoded + "\r\n")
	}
	msg.WriteString("--" + attachmentBoundary + "--\r\n")

	return []byte(msg.String()), nil
}

func (m *Mailer) send(ctx context.Context, recipients []string, msg []byte) error {
	addr := net.JoinHostPort(m.Host, m.Port)

	dialer := &net.Dialer{Timeout: m.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if m.User != "" {
		auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.User); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	return client.Quit()
}
