package weather

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Num is a numeric field which the weather service may encode either as a
// JSON number or as a string containing one.
type Num string

func (n *Num) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
	case len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"':
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("couldn't decode numeric string %s: %w", b, err)
		}
		*n = Num(strings.TrimSpace(s))
	default:
		if _, err := strconv.ParseFloat(string(b), 64); err != nil {
			return fmt.Errorf("couldn't decode number %s: %w", b, err)
		}
		*n = Num(b)
	}
	return nil
}

// Float parses the number. NaN and infinities are errors.
func (n Num) Float() (float64, error) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse number %q: %w", string(n), err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("number %q is not finite", string(n))
	}
	return f, nil
}

// Int parses the number, which must be integral.
func (n Num) Int() (int, error) {
	f, err := n.Float()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("number %q is not an integer", string(n))
	}
	return int(f), nil
}

func (n Num) String() string {
	return string(n)
}

// Result is the weather report for a location, as reported by the Yahoo
// weather service.
type Result struct {
	// Title is the report title, e.g. "Yahoo! Weather - Nome, AK, US".
	Title string `json:"title"`
	// Link is the report URL. The service may prefix it with a tracking URL
	// separated by an asterisk.
	Link          string     `json:"link"`
	LastBuildDate string     `json:"lastBuildDate"`
	Units         Units      `json:"units"`
	Wind          Wind       `json:"wind"`
	Atmosphere    Atmosphere `json:"atmosphere"`
	Astronomy     Astronomy  `json:"astronomy"`
	Item          Item       `json:"item"`
}

// Units names the units of measure used in a result.
type Units struct {
	Distance    string `json:"distance"`
	Pressure    string `json:"pressure"`
	Speed       string `json:"speed"`
	Temperature string `json:"temperature"`
}

type Wind struct {
	Chill Num `json:"chill"`
	// Direction is the bearing in degrees.
	Direction Num `json:"direction"`
	Speed     Num `json:"speed"`
}

type Atmosphere struct {
	Humidity Num `json:"humidity"`
	Pressure Num `json:"pressure"`
	// Rising is 0 for steady, 1 for rising, or 2 for falling pressure.
	Rising     Num `json:"rising"`
	Visibility Num `json:"visibility"`
}

// Astronomy holds sunrise and sunset as "H:MM am" clock times.
type Astronomy struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

type Item struct {
	// Title describes the observation, e.g.
	// "Conditions for Nome, AK, US at 07:00 AM AKST".
	Title     string      `json:"title"`
	Condition Condition   `json:"condition"`
	Forecast  []DayReport `json:"forecast"`
}

type Condition struct {
	Code Num    `json:"code"`
	Temp Num    `json:"temp"`
	Text string `json:"text"`
}

// DayReport is one day of a forecast.
type DayReport struct {
	Code Num `json:"code"`
	// Date is formatted like "03 Mar 2019".
	Date string `json:"date"`
	Day  string `json:"day"`
	High Num    `json:"high"`
	Low  Num    `json:"low"`
	Text string `json:"text"`
}
