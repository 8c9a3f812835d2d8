package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ─── Types ────────────────────────────────────────────────────────────────────

// DailyWeather is one normalized day of forecast data.
type DailyWeather struct {
	Date        string  `json:"date"`
	Temp        float64 `json:"temp"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	WeatherCode int     `json:"weather_code"`
	Icon        string  `json:"icon"`
}

// ForecastResult is the weather payload embedded in the itinerary response.
// OldDates is true when the days come from last year's observations instead
// of a live forecast.
type ForecastResult struct {
	OldDates  bool           `json:"old_dates"`
	DailyData []DailyWeather `json:"daily_data"`
}

// ForecastRequest tells the client which Open-Meteo endpoint to hit and with
// which date parameters. Exactly one of the two modes applies: Historical
// false means a live 14-day forecast from today; Historical true means the
// StartDate/EndDate window against the historical endpoint.
type ForecastRequest struct {
	Latitude   float64
	Longitude  float64
	Historical bool
	StartDate  time.Time
	EndDate    time.Time
}

const forecastDays = 14

// ─── Window resolution ────────────────────────────────────────────────────────

// ResolveForecastWindow decides between a live forecast and a synthetic
// historical window for a trip. Trips starting within the next 14 days
// (inclusive on both ends) use the live forecast. Anything else, including
// check-in dates already in the past, gets a 14-day window straddling the
// trip dates shifted back one calendar year: long trips get 14 days centered
// on the trip midpoint, short trips get the trip span padded symmetrically,
// with the odd leftover day landing after the trip.
func ResolveForecastWindow(today, checkIn, checkOut time.Time, lat, lon float64) ForecastRequest {
	daysUntilCheckin := daysBetween(today, checkIn)

	if daysUntilCheckin >= 0 && daysUntilCheckin <= forecastDays {
		return ForecastRequest{Latitude: lat, Longitude: lon}
	}

	tripDuration := daysBetween(checkIn, checkOut) + 1

	var start, end time.Time
	if tripDuration >= forecastDays {
		midPoint := checkIn.AddDate(0, 0, tripDuration/2)
		start = midPoint.AddDate(0, 0, -forecastDays/2)
		end = start.AddDate(0, 0, forecastDays-1)
	} else {
		daysBefore := (forecastDays - tripDuration) / 2
		daysAfter := forecastDays - tripDuration - daysBefore
		start = checkIn.AddDate(0, 0, -daysBefore)
		end = checkOut.AddDate(0, 0, daysAfter)
	}

	historicalYear := checkIn.Year() - 1
	return ForecastRequest{
		Latitude:   lat,
		Longitude:  lon,
		Historical: true,
		StartDate:  replaceYear(start, historicalYear),
		EndDate:    replaceYear(end, historicalYear),
	}
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// replaceYear substitutes the calendar year while keeping month and day.
// Feb 29 in a non-leap target year is clamped to Feb 28 so the window keeps
// its exact length instead of spilling into March.
func replaceYear(d time.Time, year int) time.Time {
	day := d.Day()
	if d.Month() == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, d.Month(), day, 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ─── Icon mapping ─────────────────────────────────────────────────────────────

// weatherIcons maps Open-Meteo weather codes to OpenWeatherMap icon IDs.
var weatherIcons = map[int]string{
	0:  "01d", // Clear sky
	1:  "02d", // Mainly clear
	2:  "03d", // Partly cloudy
	3:  "04d", // Overcast
	45: "50d", // Fog
	48: "50d", // Depositing rime fog
	51: "09d", // Light drizzle
	53: "09d", // Moderate drizzle
	55: "09d", // Dense drizzle
	56: "13d", // Light freezing drizzle
	57: "13d", // Dense freezing drizzle
	61: "10d", // Slight rain
	63: "10d", // Moderate rain
	65: "10d", // Heavy rain
	66: "13d", // Light freezing rain
	67: "13d", // Heavy freezing rain
	71: "13d", // Slight snow fall
	73: "13d", // Moderate snow fall
	75: "13d", // Heavy snow fall
	77: "13d", // Snow grains
	80: "09d", // Slight rain showers
	81: "09d", // Moderate rain showers
	82: "09d", // Violent rain showers
	85: "13d", // Slight snow showers
	86: "13d", // Heavy snow showers
	95: "11d", // Thunderstorm
	96: "11d", // Thunderstorm with hail
	99: "11d", // Thunderstorm with heavy hail
}

// WeatherIcon returns the OpenWeatherMap icon ID for an Open-Meteo weather
// code, defaulting to "02d" for unmapped codes.
func WeatherIcon(code int) string {
	if icon, ok := weatherIcons[code]; ok {
		return icon
	}
	return "02d"
}

func weatherIconURL(code int) string {
	return fmt.Sprintf("http://openweathermap.org/img/wn/%s.png", WeatherIcon(code))
}

// ─── Open-Meteo client ────────────────────────────────────────────────────────

const (
	openMeteoForecastURL   = "https://api.open-meteo.com/v1/forecast"
	openMeteoHistoricalURL = "https://historical-forecast-api.open-meteo.com/v1/forecast"
)

// WeatherClient fetches daily forecasts from Open-Meteo. Both the live and
// the historical endpoints return the same parallel daily arrays.
type WeatherClient struct {
	forecastURL   string
	historicalURL string
	httpClient    *http.Client
	limiter       *rate.Limiter
}

func NewWeatherClient() *WeatherClient {
	return &WeatherClient{
		forecastURL:   openMeteoForecastURL,
		historicalURL: openMeteoHistoricalURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

type openMeteoResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// GetForecast resolves the request window for the trip and fetches the daily
// forecast for it. Today is passed in rather than read from the clock so the
// window logic stays deterministic under test.
func (c *WeatherClient) GetForecast(ctx context.Context, today, checkIn, checkOut time.Time, lat, lon float64) (ForecastResult, error) {
	req := ResolveForecastWindow(today, checkIn, checkOut, lat, lon)
	return c.fetch(ctx, req)
}

func (c *WeatherClient) fetch(ctx context.Context, fr ForecastRequest) (ForecastResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ForecastResult{}, fmt.Errorf("weather rate limit wait canceled: %w", err)
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%g", fr.Latitude))
	params.Set("longitude", fmt.Sprintf("%g", fr.Longitude))
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	params.Set("timezone", "auto")

	endpoint := c.forecastURL
	if fr.Historical {
		endpoint = c.historicalURL
		params.Set("start_date", fr.StartDate.Format("2006-01-02"))
		params.Set("end_date", fr.EndDate.Format("2006-01-02"))
	} else {
		params.Set("forecast_days", fmt.Sprintf("%d", forecastDays))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return ForecastResult{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ForecastResult{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return ForecastResult{}, fmt.Errorf("weather API error (%d): %s", resp.StatusCode, string(body))
	}

	var meteo openMeteoResponse
	if err := json.Unmarshal(body, &meteo); err != nil {
		return ForecastResult{}, fmt.Errorf("failed to parse weather response: %w", err)
	}

	return ForecastResult{
		OldDates:  fr.Historical,
		DailyData: NormalizeDaily(meteo),
	}, nil
}

// NormalizeDaily flattens Open-Meteo's parallel daily arrays into per-day
// records, truncated to 14 entries. Arrays shorter than the time axis are
// tolerated; missing values stay zero.
func NormalizeDaily(meteo openMeteoResponse) []DailyWeather {
	d := meteo.Daily
	n := len(d.Time)
	if n > forecastDays {
		n = forecastDays
	}

	days := make([]DailyWeather, 0, n)
	for i := 0; i < n; i++ {
		entry := DailyWeather{Date: d.Time[i]}
		if i < len(d.Temperature2mMax) {
			entry.Temp = d.Temperature2mMax[i]
			entry.TempMax = d.Temperature2mMax[i]
		}
		if i < len(d.Temperature2mMin) {
			entry.TempMin = d.Temperature2mMin[i]
		}
		if i < len(d.WeatherCode) {
			entry.WeatherCode = d.WeatherCode[i]
		}
		entry.Icon = weatherIconURL(entry.WeatherCode)
		days = append(days, entry)
	}
	return days
}
