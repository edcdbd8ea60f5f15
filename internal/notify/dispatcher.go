// Package notify delivers ticket documents to buyers by email.
package notify

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

const attachmentName = "Tickets.pdf"

// SendFunc hands a composed message to a mail transport.
type SendFunc func(m *gomail.Message) error

// Message is one ticket delivery.
type Message struct {
	To        string
	FirstName string
	LastName  string
	OrderID   uuid.UUID
	Document  []byte
}

type Dispatcher struct {
	from    string
	send    SendFunc
	tempDir string
}

// NewDispatcher returns a Dispatcher that sends over SMTP.
func NewDispatcher(host string, port int, user, password, from string) *Dispatcher {
	dialer := gomail.NewDialer(host, port, user, password)
	return NewDispatcherWithSender(from, func(m *gomail.Message) error {
		return dialer.DialAndSend(m)
	})
}

func NewDispatcherWithSender(from string, send SendFunc) *Dispatcher {
	return &Dispatcher{from: from, send: send}
}

var bodyTemplate = template.Must(template.New("body").Parse(
	`<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>Thank you for your order. Your tickets are attached.</p>
<p>Order ID: {{.OrderID}}</p>`))

// Send writes the document to a temporary artifact, attaches it and sends
// the mail. The artifact is removed once the transport returns, whatever
// the outcome. Send returns ctx.Err() if the context ends first.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("missing recipient")
	}

	var body strings.Builder
	if err := bodyTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("compose mail: %w", err)
	}

	path, err := d.writeArtifact(msg.Document)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", "Your Tickets")
	m.SetBody("text/html", body.String())
	m.Attach(path, gomail.Rename(attachmentName))

	done := make(chan error, 1)
	go func() {
		defer os.Remove(path)
		done <- d.send(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) writeArtifact(document []byte) (string, error) {
	f, err := os.CreateTemp(d.tempDir, "tickets-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create ticket artifact: %w", err)
	}

	if _, err := f.Write(document); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write ticket artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write ticket artifact: %w", err)
	}
	return f.Name(), nil
}
