package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ItineraryPDFData is the aggregated trip result rendered into the summary
// document.
type ItineraryPDFData struct {
	City         string
	Country      string
	TripDuration string
	Flights      []FlightOffer
	BookingLink  string
	Weather      ForecastResult
	TravelTips   string
}

// GenerateItineraryPDF renders the aggregate as a PDF and returns raw bytes
// (no filesystem needed).
func GenerateItineraryPDF(data ItineraryPDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "Travel Manager", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Trip Itinerary Summary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Section Helper ───────────────────────────────────────
	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	// ── Destination ───────────────────────────────────────────
	sectionHeader("Destination")
	row("City", data.City)
	row("Country", data.Country)
	row("Duration", data.TripDuration)
	row("Generated", time.Now().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Flight Offers ─────────────────────────────────────────
	sectionHeader("Flight Offers")
	if len(data.Flights) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(170, 7, "No flight offers found.", "", 1, "L", false, 0, "")
	}
	for i, offer := range data.Flights {
		if i >= 5 {
			break
		}
		label := fmt.Sprintf("Offer %d (%s)", i+1, offer.Airlines)
		row(label, fmt.Sprintf("%s %s", offer.Price, offer.Currency))
		for _, it := range offer.Itineraries {
			if len(it.Segments) == 0 {
				continue
			}
			first := it.Segments[0]
			last := it.Segments[len(it.Segments)-1]
			row("", fmt.Sprintf("%s %s → %s %s (%s)",
				first.Departure.IataCode, formatSegmentTime(first.Departure.At),
				last.Arrival.IataCode, formatSegmentTime(last.Arrival.At),
				it.Duration))
		}
	}
	pdf.Ln(4)

	// ── Hotels ────────────────────────────────────────────────
	if data.BookingLink != "" {
		sectionHeader("Hotels")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(40, 40, 120)
		pdf.MultiCell(170, 5, data.BookingLink, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(4)
	}

	// ── Weather ───────────────────────────────────────────────
	if len(data.Weather.DailyData) > 0 {
		title := "Weather Forecast"
		if data.Weather.OldDates {
			title = "Weather (same dates last year)"
		}
		sectionHeader(title)
		for _, day := range data.Weather.DailyData {
			row(day.Date, fmt.Sprintf("%.0f°C / %.0f°C", day.TempMin, day.TempMax))
		}
		pdf.Ln(4)
	}

	// ── Travel Tips ───────────────────────────────────────────
	if data.TravelTips != "" {
		sectionHeader("Travel Tips")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(170, 5, data.TravelTips, "", "L", false)
		pdf.Ln(4)
	}

	// ── Footer ────────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8,
		"Generated by Travel Manager · Not a booking confirmation · Prices subject to change",
		"", 0, "C", false, 0, "")

	// ── Write to buffer ───────────────────────────────────────
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func formatSegmentTime(at string) string {
	t, err := time.Parse("2006-01-02T15:04:05", at)
	if err != nil {
		return at
	}
	return t.Format("02 Jan 15:04")
}
