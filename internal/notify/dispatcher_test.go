package notify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func newTestDispatcher(t *testing.T, send SendFunc) (*Dispatcher, string) {
	dir := t.TempDir()
	d := NewDispatcherWithSender("tickets@example.com", send)
	d.tempDir = dir
	return d, dir
}

func dirEmpty(t *testing.T, dir string) bool {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries) == 0
}

func TestSendAttachesDocumentAndCleansUp(t *testing.T) {
	var rendered bytes.Buffer
	d, dir := newTestDispatcher(t, func(m *gomail.Message) error {
		_, err := m.WriteTo(&rendered)
		return err
	})

	orderID := uuid.New()
	err := d.Send(context.Background(), Message{
		To:        "bima@example.com",
		FirstName: "Bima",
		LastName:  "Putra",
		OrderID:   orderID,
		Document:  []byte("%PDF-1.3 test"),
	})
	require.NoError(t, err)

	out := rendered.String()
	assert.Contains(t, out, "Subject: Your Tickets")
	assert.Contains(t, out, "To: bima@example.com")
	assert.Contains(t, out, `filename="Tickets.pdf"`)
	assert.Contains(t, out, orderID.String())
	assert.True(t, dirEmpty(t, dir))
}

func TestSendFailureStillCleansUp(t *testing.T) {
	d, dir := newTestDispatcher(t, func(*gomail.Message) error {
		return errors.New("smtp: 550 mailbox unavailable")
	})

	err := d.Send(context.Background(), Message{To: "bima@example.com", OrderID: uuid.New(), Document: []byte("%PDF")})
	assert.ErrorContains(t, err, "mailbox unavailable")
	assert.True(t, dirEmpty(t, dir))
}

func TestSendTimeout(t *testing.T) {
	release := make(chan struct{})
	d, dir := newTestDispatcher(t, func(*gomail.Message) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Send(ctx, Message{To: "bima@example.com", OrderID: uuid.New(), Document: []byte("%PDF")})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	assert.Eventually(t, func() bool { return dirEmpty(t, dir) }, time.Second, 10*time.Millisecond)
}

func TestSendRequiresRecipient(t *testing.T) {
	d, _ := newTestDispatcher(t, func(*gomail.Message) error { return nil })

	assert.Error(t, d.Send(context.Background(), Message{Document: []byte("%PDF")}))
}
