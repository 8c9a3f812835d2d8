package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/7FyD/travel-manager-api/services"

	"github.com/gin-gonic/gin"
)

// FlightSearcher is the flight provider boundary. A search failure is fatal
// to the whole planner request.
type FlightSearcher interface {
	SearchFlightOffers(ctx context.Context, q services.FlightQuery) ([]services.FlightOffer, error)
}

// ForecastProvider is the weather boundary. Failures degrade to an empty
// forecast instead of failing the request.
type ForecastProvider interface {
	GetForecast(ctx context.Context, today, checkIn, checkOut time.Time, lat, lon float64) (services.ForecastResult, error)
}

// ContentGenerator produces the landmarks and travel-tips text. Failures
// degrade to empty/null.
type ContentGenerator interface {
	Landmarks(ctx context.Context, city, country string) (string, error)
	TravelTips(ctx context.Context, city, country string, days int) (string, error)
}

// TravelHandler aggregates flights, hotel links, weather and AI content for
// one trip query. All collaborators are injected so tests can swap in fakes.
type TravelHandler struct {
	Flights FlightSearcher
	Weather ForecastProvider
	AI      ContentGenerator
	Now     func() time.Time
}

func NewTravelHandler(flights FlightSearcher, weather ForecastProvider, ai ContentGenerator) *TravelHandler {
	return &TravelHandler{
		Flights: flights,
		Weather: weather,
		AI:      ai,
		Now:     time.Now,
	}
}

type DestinationInfo struct {
	City       string      `json:"city"`
	Country    string      `json:"country"`
	Weather    interface{} `json:"weather"`
	Landmarks  interface{} `json:"landmarks"`
	TravelTips *string     `json:"travel_tips"`
}

type PlannerResponse struct {
	Flights         []services.FlightOffer `json:"flights"`
	Hotels          *string                `json:"hotels"`
	DestinationInfo DestinationInfo        `json:"destination_info"`
	TripDuration    string                 `json:"trip_duration"`
}

// plannerQuery is the parsed and defaulted query string.
type plannerQuery struct {
	Origin      string
	Destination string
	Departure   string
	CheckIn     time.Time
	CheckOut    time.Time
	CheckInRaw  string
	CheckOutRaw string
	Adults      int
	Children    int
	Currency    string
	Max         int
	TravelClass string
}

func parsePlannerQuery(c *gin.Context) (plannerQuery, error) {
	required := []string{"originLocationCode", "destinationLocationCode", "departureDate", "checkInDate", "checkOutDate"}
	for _, f := range required {
		if c.Query(f) == "" {
			return plannerQuery{}, errors.New("Missing required parameters")
		}
	}

	q := plannerQuery{
		Origin:      strings.ToUpper(c.Query("originLocationCode")),
		Destination: strings.ToUpper(c.Query("destinationLocationCode")),
		Departure:   c.Query("departureDate"),
		CheckInRaw:  c.Query("checkInDate"),
		CheckOutRaw: c.Query("checkOutDate"),
		Adults:      intQuery(c, "adults", 1),
		Children:    intQuery(c, "children", 0),
		Currency:    stringQuery(c, "currencyCode", "EUR"),
		Max:         intQuery(c, "max", 5),
		TravelClass: stringQuery(c, "travelClass", "BUSINESS"),
	}

	var err error
	if q.CheckIn, err = time.Parse("2006-01-02", q.CheckInRaw); err != nil {
		return plannerQuery{}, errors.New("Invalid check-in date format. Use YYYY-MM-DD")
	}
	if q.CheckOut, err = time.Parse("2006-01-02", q.CheckOutRaw); err != nil {
		return plannerQuery{}, errors.New("Invalid check-out date format. Use YYYY-MM-DD")
	}
	if q.CheckOut.Before(q.CheckIn) {
		return plannerQuery{}, errors.New("Check-out date must not be before check-in date")
	}

	return q, nil
}

// PlanTrip handles GET /api/travel-planner.
func (h *TravelHandler) PlanTrip(c *gin.Context) {
	resp, status, err := h.buildPlan(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PlanTripPDF handles GET /api/travel-planner/pdf, rendering the same
// aggregate as a downloadable summary document.
func (h *TravelHandler) PlanTripPDF(c *gin.Context) {
	resp, status, err := h.buildPlan(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	pdfBytes, err := services.GenerateItineraryPDF(resp.toPDFData())
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=travel-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (h *TravelHandler) buildPlan(c *gin.Context) (*PlannerResponse, int, error) {
	q, err := parsePlannerQuery(c)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	ctx := c.Request.Context()
	tripDays := int(q.CheckOut.Sub(q.CheckIn).Hours()/24) + 1

	destAirport, err := services.LookupAirport(q.Destination)
	if errors.Is(err, services.ErrAirportNotFound) {
		return nil, http.StatusBadRequest, errors.New("Invalid destination airport")
	}

	// Flight provider failure aborts the whole request.
	flights, err := h.Flights.SearchFlightOffers(ctx, services.FlightQuery{
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: q.Departure,
		Adults:        q.Adults,
		Currency:      q.Currency,
		Max:           q.Max,
		TravelClass:   q.TravelClass,
	})
	if err != nil {
		var pe *services.ProviderError
		if errors.As(err, &pe) {
			return nil, http.StatusBadRequest, err
		}
		return nil, http.StatusInternalServerError, err
	}

	resp := &PlannerResponse{
		Flights:      flights,
		TripDuration: fmt.Sprintf("%d days", tripDays),
		DestinationInfo: DestinationInfo{
			City:    destAirport.City,
			Country: destAirport.Country,
		},
	}

	if link := services.BookingSearchURL(destAirport, q.CheckInRaw, q.CheckOutRaw, q.Adults, q.Children); link != "" {
		resp.Hotels = &link
	}

	// Enrichment failures degrade independently: a flaky weather or AI
	// provider never blocks the flight/hotel result.
	today := h.Now().UTC().Truncate(24 * time.Hour)
	forecast, err := h.Weather.GetForecast(ctx, today, q.CheckIn, q.CheckOut, destAirport.Latitude, destAirport.Longitude)
	if err != nil {
		log.Printf("⚠️  Weather forecast failed: %v", err)
		resp.DestinationInfo.Weather = []services.DailyWeather{}
	} else {
		resp.DestinationInfo.Weather = forecast
	}

	landmarks, err := h.AI.Landmarks(ctx, destAirport.City, destAirport.Country)
	if err != nil {
		log.Printf("⚠️  Landmark generation failed: %v", err)
		resp.DestinationInfo.Landmarks = []string{}
	} else {
		resp.DestinationInfo.Landmarks = landmarks
	}

	tips, err := h.AI.TravelTips(ctx, destAirport.City, destAirport.Country, tripDays)
	if err != nil {
		log.Printf("⚠️  Travel tip generation failed: %v", err)
	} else {
		resp.DestinationInfo.TravelTips = &tips
	}

	return resp, http.StatusOK, nil
}

func (r *PlannerResponse) toPDFData() services.ItineraryPDFData {
	data := services.ItineraryPDFData{
		City:         r.DestinationInfo.City,
		Country:      r.DestinationInfo.Country,
		TripDuration: r.TripDuration,
		Flights:      r.Flights,
	}
	if r.Hotels != nil {
		data.BookingLink = *r.Hotels
	}
	if forecast, ok := r.DestinationInfo.Weather.(services.ForecastResult); ok {
		data.Weather = forecast
	}
	if r.DestinationInfo.TravelTips != nil {
		data.TravelTips = *r.DestinationInfo.TravelTips
	}
	return data
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func stringQuery(c *gin.Context, key, fallback string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return fallback
}
