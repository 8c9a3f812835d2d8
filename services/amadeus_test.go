package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const offersFixture = `{
	"data": [
		{
			"id": "1",
			"price": {"total": "612.40", "currency": "EUR"},
			"validatingAirlineCodes": ["LH", "OS"],
			"itineraries": [
				{
					"duration": "PT5H30M",
					"segments": [
						{
							"departure": {"iataCode": "OTP", "at": "2025-06-01T06:10:00"},
							"arrival": {"iataCode": "MUC", "at": "2025-06-01T07:20:00"},
							"carrierCode": "LH",
							"number": "1655",
							"duration": "PT2H10M"
						},
						{
							"departure": {"iataCode": "MUC", "at": "2025-06-01T09:00:00"},
							"arrival": {"iataCode": "CDG", "at": "2025-06-01T10:40:00"},
							"carrierCode": "LH",
							"number": "2230",
							"duration": "PT1H40M"
						}
					]
				}
			]
		}
	]
}`

func TestParseFlightOffers(t *testing.T) {
	offers, err := parseFlightOffers([]byte(offersFixture))
	if err != nil {
		t.Fatalf("parseFlightOffers failed: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}

	offer := offers[0]
	if offer.ID != "1" || offer.Price != "612.40" || offer.Currency != "EUR" {
		t.Errorf("offer header = %+v", offer)
	}
	if offer.Airlines != "LH, OS" {
		t.Errorf("airlines = %q, want \"LH, OS\"", offer.Airlines)
	}
	if len(offer.Itineraries) != 1 || offer.Itineraries[0].Duration != "PT5H30M" {
		t.Fatalf("itineraries = %+v", offer.Itineraries)
	}

	segs := offer.Itineraries[0].Segments
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Departure.IataCode != "OTP" || segs[0].FlightNumber != "1655" || segs[0].Duration != "PT2H10M" {
		t.Errorf("first segment = %+v", segs[0])
	}
	if segs[1].Arrival.IataCode != "CDG" || segs[1].CarrierCode != "LH" {
		t.Errorf("second segment = %+v", segs[1])
	}
}

func TestParseFlightOffersEmpty(t *testing.T) {
	offers, err := parseFlightOffers([]byte(`{"data": []}`))
	if err != nil {
		t.Fatalf("parseFlightOffers failed: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("got %d offers, want 0", len(offers))
	}
}

func TestSearchFlightOffers(t *testing.T) {
	var gotSearch map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			fmt.Fprint(w, `{"access_token": "test-token", "expires_in": 1799}`)
		case "/v2/shopping/flight-offers":
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("Authorization = %q", got)
			}
			gotSearch = map[string]string{}
			for k := range r.URL.Query() {
				gotSearch[k] = r.URL.Query().Get(k)
			}
			fmt.Fprint(w, offersFixture)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewAmadeusClient("id", "secret", "test")
	c.baseURL = srv.URL

	offers, err := c.SearchFlightOffers(context.Background(), FlightQuery{
		Origin:        "OTP",
		Destination:   "CDG",
		DepartureDate: "2025-06-01",
		Adults:        2,
		Currency:      "EUR",
		Max:           5,
		TravelClass:   "BUSINESS",
	})
	if err != nil {
		t.Fatalf("SearchFlightOffers failed: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}

	want := map[string]string{
		"originLocationCode":      "OTP",
		"destinationLocationCode": "CDG",
		"departureDate":           "2025-06-01",
		"adults":                  "2",
		"currencyCode":            "EUR",
		"max":                     "5",
		"travelClass":             "BUSINESS",
	}
	for k, v := range want {
		if gotSearch[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotSearch[k], v)
		}
	}
}

func TestSearchFlightOffersProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/security/oauth2/token" {
			fmt.Fprint(w, `{"access_token": "test-token", "expires_in": 1799}`)
			return
		}
		http.Error(w, `{"errors":[{"detail":"Invalid date"}]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewAmadeusClient("id", "secret", "test")
	c.baseURL = srv.URL

	_, err := c.SearchFlightOffers(context.Background(), FlightQuery{Origin: "OTP", Destination: "CDG"})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", pe.StatusCode)
	}
}

func TestSearchFlightOffersUnconfigured(t *testing.T) {
	c := NewAmadeusClient("", "", "test")
	_, err := c.SearchFlightOffers(context.Background(), FlightQuery{Origin: "OTP", Destination: "CDG"})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError when unconfigured, got %v", err)
	}
}
