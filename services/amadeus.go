package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ─── Types ────────────────────────────────────────────────────────────────────

// FlightQuery carries the search parameters for a one-way flight offer lookup.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	Adults        int
	Currency      string
	Max           int
	TravelClass   string
}

// FlightSegment is one leg of an itinerary.
type FlightSegment struct {
	Departure    FlightEndpoint `json:"departure"`
	Arrival      FlightEndpoint `json:"arrival"`
	CarrierCode  string         `json:"carrierCode"`
	FlightNumber string         `json:"flightNumber"`
	Duration     string         `json:"duration"`
}

type FlightEndpoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

type FlightItinerary struct {
	Duration string          `json:"duration"`
	Segments []FlightSegment `json:"segments"`
}

// FlightOffer is the projected offer returned to API consumers.
type FlightOffer struct {
	ID          string            `json:"id"`
	Price       string            `json:"price"`
	Currency    string            `json:"currency"`
	Airlines    string            `json:"airlines"`
	Itineraries []FlightItinerary `json:"itineraries"`
}

// ProviderError carries a flight provider rejection through to the HTTP
// layer, where it surfaces as a 400 with the provider's message.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("amadeus error (%d): %s", e.StatusCode, e.Message)
}

// ─── Amadeus Client ───────────────────────────────────────────────────────────

// AmadeusClient talks to the Amadeus Flight Offers Search API using OAuth2
// client credentials. Construct it once in main and inject it into handlers.
type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// NewAmadeusClient builds a client against the production or test
// environment depending on env ("production" selects the live API).
func NewAmadeusClient(clientID, clientSecret, env string) *AmadeusClient {
	baseURL := "https://test.api.amadeus.com"
	if env == "production" {
		baseURL = "https://api.amadeus.com"
	}

	return &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("amadeus rate limit wait canceled: %w", err)
	}

	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// SearchFlightOffers queries the Flight Offers Search API and projects the
// raw offers down to the fields the planner exposes.
func (c *AmadeusClient) SearchFlightOffers(ctx context.Context, q FlightQuery) ([]FlightOffer, error) {
	if c.clientID == "" {
		return nil, &ProviderError{StatusCode: http.StatusServiceUnavailable, Message: "amadeus not configured"}
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", fmt.Sprintf("%d", q.Adults))
	params.Set("currencyCode", q.Currency)
	params.Set("max", fmt.Sprintf("%d", q.Max))
	params.Set("travelClass", q.TravelClass)

	body, err := c.doRequest(ctx, http.MethodGet, "/v2/shopping/flight-offers?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return parseFlightOffers(body)
}

// Amadeus flight offers response structures
type amadeusFlightOffersResponse struct {
	Data []amadeusFlightOffer `json:"data"`
}

type amadeusFlightOffer struct {
	ID    string `json:"id"`
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	Itineraries []struct {
		Duration string `json:"duration"`
		Segments []struct {
			Departure struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"arrival"`
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
			Duration    string `json:"duration"`
		} `json:"segments"`
	} `json:"itineraries"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
}

func parseFlightOffers(data []byte) ([]FlightOffer, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	offers := make([]FlightOffer, 0, len(resp.Data))
	for _, raw := range resp.Data {
		offer := FlightOffer{
			ID:          raw.ID,
			Price:       raw.Price.Total,
			Currency:    raw.Price.Currency,
			Airlines:    strings.Join(raw.ValidatingAirlineCodes, ", "),
			Itineraries: make([]FlightItinerary, 0, len(raw.Itineraries)),
		}

		for _, it := range raw.Itineraries {
			itinerary := FlightItinerary{
				Duration: it.Duration,
				Segments: make([]FlightSegment, 0, len(it.Segments)),
			}
			for _, seg := range it.Segments {
				itinerary.Segments = append(itinerary.Segments, FlightSegment{
					Departure:    FlightEndpoint{IataCode: seg.Departure.IataCode, At: seg.Departure.At},
					Arrival:      FlightEndpoint{IataCode: seg.Arrival.IataCode, At: seg.Arrival.At},
					CarrierCode:  seg.CarrierCode,
					FlightNumber: seg.Number,
					Duration:     seg.Duration,
				})
			}
			offer.Itineraries = append(offer.Itineraries, itinerary)
		}

		offers = append(offers, offer)
	}

	return offers, nil
}
