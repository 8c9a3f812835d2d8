package services

import (
	"fmt"
	"net/url"
	"strings"
)

// BookingSearchURL builds a booking.com search link for the destination city
// over the stay dates. Returns "" when either date is not YYYY-MM-DD; the
// caller treats that as "no hotel link" rather than an error.
func BookingSearchURL(airport Airport, checkIn, checkOut string, adults, children int) string {
	ciParts := strings.Split(checkIn, "-")
	coParts := strings.Split(checkOut, "-")
	if len(ciParts) != 3 || len(coParts) != 3 {
		return ""
	}

	return fmt.Sprintf(
		"https://www.booking.com/searchresults.html?"+
			"ss=%s+%s&"+
			"checkin_year=%s&checkin_month=%s&checkin_monthday=%s&"+
			"checkout_year=%s&checkout_month=%s&checkout_monthday=%s&"+
			"group_adults=%d&group_children=%d",
		url.QueryEscape(airport.City), url.QueryEscape(airport.Country),
		ciParts[0], ciParts[1], ciParts[2],
		coParts[0], coParts[1], coParts[2],
		adults, children,
	)
}
