// Package render produces the printable ticket document sent to buyers.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
)

// Imager turns a ticket unit into a PNG QR image.
type Imager interface {
	Image(record domain.QRCodeRecord) ([]byte, error)
}

type Renderer struct {
	images Imager
}

func NewRenderer(images Imager) *Renderer {
	return &Renderer{images: images}
}

type lineKey struct {
	eventID      uuid.UUID
	ticketTypeID uuid.UUID
}

type lineInfo struct {
	event    *models.Event
	ticket   *models.TicketType
	quantity int
}

// Render builds a PDF with an order summary page followed by one page per
// ticket unit carrying its QR code. The order must have its events and
// ticket types loaded.
func (r *Renderer) Render(ctx context.Context, order *models.Order, records []domain.QRCodeRecord) ([]byte, error) {
	lines := make(map[lineKey]lineInfo)
	for _, group := range order.Events {
		for _, line := range group.Tickets {
			lines[lineKey{group.EventID, line.TicketTypeID}] = lineInfo{
				event:    group.Event,
				ticket:   line.TicketType,
				quantity: line.Quantity,
			}
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tickets", false)
	pdf.SetAuthor("tixflow", false)

	writeSummary(pdf, order)

	for n, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, ok := lines[lineKey{record.EventID, record.TicketTypeID}]
		if !ok {
			return nil, fmt.Errorf("ticket %s is not part of order %s", record.TicketTypeID, order.ID)
		}

		png, err := r.images.Image(record)
		if err != nil {
			return nil, err
		}
		writeTicket(pdf, n, record, info, png)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render tickets: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render tickets: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(pdf *gofpdf.Fpdf, order *models.Order) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ORDER SUMMARY")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Order     : %s", order.ID),
		fmt.Sprintf("Name      : %s %s", order.FirstName, order.LastName),
		fmt.Sprintf("Email     : %s", order.Email),
		fmt.Sprintf("Total     : %s", formatAmount(order.TotalPrice, order.Currency)),
	}
	for _, s := range header {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(6)

	for _, group := range order.Events {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, eventTitle(group.Event))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "", 11)
		for _, line := range group.Tickets {
			pdf.Cell(0, 6, fmt.Sprintf("  %d x %s", line.Quantity, ticketName(line.TicketType)))
			pdf.Ln(6)
		}
		pdf.Ln(3)
	}
}

func writeTicket(pdf *gofpdf.Fpdf, n int, record domain.QRCodeRecord, info lineInfo, png []byte) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, eventTitle(info.event))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	details := []string{
		fmt.Sprintf("Ticket    : %s (%d of %d)", ticketName(info.ticket), record.SequenceIndex, info.quantity),
	}
	if info.event != nil {
		details = append(details,
			fmt.Sprintf("When      : %s", info.event.StartTime.Format("Mon, 02 Jan 2006 15:04")),
			fmt.Sprintf("Where     : %s", info.event.Location),
		)
	}
	for _, s := range details {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	name := fmt.Sprintf("qr-%d", n)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, 55, pdf.GetY()+8, 100, 100, false, opts, 0, "")

	pdf.SetY(pdf.GetY() + 116)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Present this code at the entrance. Each code admits one person once.", "", "", false)
}

func eventTitle(event *models.Event) string {
	if event == nil {
		return "Event"
	}
	return event.Title
}

func ticketName(ticket *models.TicketType) string {
	if ticket == nil {
		return "Ticket"
	}
	return ticket.Type
}

func formatAmount(minor int64, currency string) string {
	return domain.FormatAmount(minor, currency)
}
