// Package tools holds the function tools handed to agents in the scenarios.
package tools

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

var ErrDivisionByZero = errors.New("division by zero")

var fxQuotes = map[string]string{
	"USD/KRW": "1,375.2",
	"EUR/KRW": "1,470.5",
}

// GetWeather returns a canned weather report. Only Seoul in metric units has its own line.
func GetWeather(city, units string) string {
	if units == "" {
		units = "metric"
	}
	if strings.EqualFold(city, "seoul") && units == "metric" {
		return "Seoul weather: 18°C, light rain, moderate wind."
	}
	return fmt.Sprintf("%s weather: 20°C, clear.", city)
}

// GetFX returns a mock quote for a currency pair, "n/a" when unknown.
func GetFX(pair string) string {
	if pair == "" {
		pair = "USD/KRW"
	}
	quote, ok := fxQuotes[pair]
	if !ok {
		quote = "n/a"
	}
	return fmt.Sprintf("%s ~ %s (mock quote).", pair, quote)
}

// SearchWeb answers baseline/current lookups with fixed values.
func SearchWeb(query string) string {
	switch {
	case strings.Contains(query, "baseline"):
		return "Baseline value: 200 (mock)."
	case strings.Contains(query, "current"):
		return "Current value: 260 (mock)."
	default:
		return "No data."
	}
}

// PercentageChange is (end-start)/start*100.
func PercentageChange(start, end float64) (float64, error) {
	if start == 0 {
		return 0, ErrDivisionByZero
	}
	return (end - start) / start * 100.0, nil
}

// NowInTimezone formats now in the IANA zone tz with second precision.
func NowInTimezone(tz string, now time.Time) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return now.In(loc).Format(time.RFC3339), nil
}

// Weather is the structured payload returned by CurrentWeatherJSON.
type Weather struct {
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Conditions  string `json:"conditions"`
}

func CurrentWeatherJSON(location, unit string) Weather {
	if location == "" {
		location = "Boston, MA"
	}
	temp := "18°C"
	if unit == "fahrenheit" {
		temp = "64°F"
	}
	return Weather{Location: location, Temperature: temp, Conditions: "Partly cloudy"}
}
