package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/phpdave11/gofpdf"
)

type bookingLookup interface {
	LookupByCode(ctx context.Context, code string) (*models.BookingDetailsResponse, error)
}

// TicketDocumentService renders e-tickets for confirmed bookings
type TicketDocumentService struct {
	lookup bookingLookup
}

// NewTicketDocumentService creates a new TicketDocumentService
func NewTicketDocumentService(lookup bookingLookup) *TicketDocumentService {
	return &TicketDocumentService{lookup: lookup}
}

// GenerateETicket returns a PDF with one page per ticket of the booking and
// the file name to serve it under.
func (s *TicketDocumentService) GenerateETicket(ctx context.Context, bookingCode string) ([]byte, string, error) {
	details, err := s.lookup.LookupByCode(ctx, bookingCode)
	if err != nil {
		return nil, "", err
	}
	if details.BookingStatus != string(models.BookingStatusConfirmed) {
		return nil, "", conflictError("E-tickets are only available for confirmed bookings")
	}
	return buildETicketPDF(details)
}

func buildETicketPDF(d *models.BookingDetailsResponse) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+d.BookingCode, false)

	tickets := d.Tickets
	if len(tickets) == 0 {
		tickets = []models.TicketDetail{{TicketCode: d.BookingCode, PassengerName: d.ContactName}}
	}

	for _, t := range tickets {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 18)
		pdf.Cell(0, 10, "E-TICKET")
		pdf.Ln(12)

		pdf.SetFont("Helvetica", "", 12)
		lines := []string{
			fmt.Sprintf("Passenger      : %s", safe(t.PassengerName, "-")),
			fmt.Sprintf("Train / Trip   : %s / %s", safe(d.TrainNumber, "-"), safe(d.TripCode, "-")),
			fmt.Sprintf("Journey        : %s -> %s", safe(d.DepartureStation, "-"), safe(d.ArrivalStation, "-")),
			fmt.Sprintf("Departure      : %s", d.DepartureTime.Format("2006-01-02 15:04")),
			fmt.Sprintf("Arrival        : %s", d.ArrivalTime.Format("2006-01-02 15:04")),
			fmt.Sprintf("Carriage/Seat  : %s / %s", safe(t.CarriageNumber, "-"), safe(t.SeatNumber, "-")),
			fmt.Sprintf("Class          : %s %s", safe(t.SeatClass, "-"), t.SeatType),
			fmt.Sprintf("Fare           : %s", formatVND(int64(t.TotalPrice))),
			fmt.Sprintf("Booking code   : %s", d.BookingCode),
			fmt.Sprintf("Ticket code    : %s", safe(t.TicketCode, "-")),
		}
		for _, line := range lines {
			pdf.Cell(0, 7, line)
			pdf.Ln(7)
		}

		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Valid for one passenger. Boarding opens 2 hours before departure; present the ticket code at the gate.", "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render e-ticket: %w", err)
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(d.BookingCode))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

func formatVND(v int64) string {
	if v <= 0 {
		return "0 VND"
	}
	s := fmt.Sprintf("%d", v)
	var out []byte
	n := len(s)
	for i := 0; i < n; i++ {
		out = append(out, s[i])
		pos := n - i - 1
		if pos > 0 && pos%3 == 0 {
			out = append(out, ',')
		}
	}
	return string(out) + " VND"
}
