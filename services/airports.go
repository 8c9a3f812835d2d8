package services

import (
	"errors"
	"strings"
)

// Airport holds the destination metadata keyed by IATA code.
type Airport struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// ErrAirportNotFound is returned for IATA codes missing from the table.
var ErrAirportNotFound = errors.New("airport not found")

// airports maps IATA codes to city, country and coordinates for the airports
// the planner supports as origins and destinations.
var airports = map[string]Airport{
	"AMS": {"Amsterdam", "Netherlands", 52.3105, 4.7683},
	"ARN": {"Stockholm", "Sweden", 59.6519, 17.9186},
	"ATH": {"Athens", "Greece", 37.9364, 23.9445},
	"ATL": {"Atlanta", "United States", 33.6407, -84.4277},
	"BCN": {"Barcelona", "Spain", 41.2974, 2.0833},
	"BER": {"Berlin", "Germany", 52.3667, 13.5033},
	"BKK": {"Bangkok", "Thailand", 13.6900, 100.7501},
	"BOM": {"Mumbai", "India", 19.0896, 72.8656},
	"BRU": {"Brussels", "Belgium", 50.9010, 4.4844},
	"BUD": {"Budapest", "Hungary", 47.4298, 19.2611},
	"CAI": {"Cairo", "Egypt", 30.1219, 31.4056},
	"CDG": {"Paris", "France", 49.0097, 2.5479},
	"CPH": {"Copenhagen", "Denmark", 55.6181, 12.6561},
	"CPT": {"Cape Town", "South Africa", -33.9715, 18.6021},
	"DEL": {"New Delhi", "India", 28.5562, 77.1000},
	"DOH": {"Doha", "Qatar", 25.2731, 51.6081},
	"DUB": {"Dublin", "Ireland", 53.4264, -6.2499},
	"DXB": {"Dubai", "United Arab Emirates", 25.2532, 55.3657},
	"EDI": {"Edinburgh", "United Kingdom", 55.9508, -3.3615},
	"EWR": {"Newark", "United States", 40.6895, -74.1745},
	"FCO": {"Rome", "Italy", 41.8003, 12.2389},
	"FRA": {"Frankfurt", "Germany", 50.0379, 8.5622},
	"GVA": {"Geneva", "Switzerland", 46.2381, 6.1090},
	"HEL": {"Helsinki", "Finland", 60.3172, 24.9633},
	"HND": {"Tokyo", "Japan", 35.5494, 139.7798},
	"IST": {"Istanbul", "Turkey", 41.2753, 28.7519},
	"JFK": {"New York", "United States", 40.6413, -73.7781},
	"KEF": {"Reykjavik", "Iceland", 63.9850, -22.6056},
	"LAX": {"Los Angeles", "United States", 33.9416, -118.4085},
	"LGW": {"London", "United Kingdom", 51.1537, -0.1821},
	"LHR": {"London", "United Kingdom", 51.4700, -0.4543},
	"LIS": {"Lisbon", "Portugal", 38.7742, -9.1342},
	"MAD": {"Madrid", "Spain", 40.4839, -3.5680},
	"MEX": {"Mexico City", "Mexico", 19.4363, -99.0721},
	"MUC": {"Munich", "Germany", 48.3537, 11.7750},
	"MXP": {"Milan", "Italy", 45.6306, 8.7281},
	"NCE": {"Nice", "France", 43.6584, 7.2159},
	"NRT": {"Tokyo", "Japan", 35.7719, 140.3929},
	"OPO": {"Porto", "Portugal", 41.2481, -8.6814},
	"ORD": {"Chicago", "United States", 41.9742, -87.9073},
	"OSL": {"Oslo", "Norway", 60.1976, 11.1004},
	"OTP": {"Bucharest", "Romania", 44.5711, 26.0850},
	"PRG": {"Prague", "Czech Republic", 50.1008, 14.2632},
	"SFO": {"San Francisco", "United States", 37.6213, -122.3790},
	"SIN": {"Singapore", "Singapore", 1.3644, 103.9915},
	"SYD": {"Sydney", "Australia", -33.9399, 151.1753},
	"TAS": {"Tashkent", "Uzbekistan", 41.2579, 69.2812},
	"VIE": {"Vienna", "Austria", 48.1103, 16.5697},
	"WAW": {"Warsaw", "Poland", 52.1657, 20.9671},
	"YYZ": {"Toronto", "Canada", 43.6777, -79.6248},
	"ZRH": {"Zurich", "Switzerland", 47.4515, 8.5646},
}

// LookupAirport resolves a 3-letter IATA code. Codes are matched
// case-insensitively.
func LookupAirport(code string) (Airport, error) {
	a, ok := airports[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Airport{}, ErrAirportNotFound
	}
	return a, nil
}
