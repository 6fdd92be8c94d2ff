package weather

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zephyrtronium/a2/message"
)

// Color is the accent color of weather embeds, the purple of the Yahoo! logo.
const Color = 4194448

const (
	authorName = "Yahoo! Weather"
	authorURL  = "https://www.yahoo.com/news/weather"
	authorIcon = "https://s.yimg.com/dh/ap/default/130909/y_200_a.png"

	titlePrefix = "Yahoo! Weather - "
)

// ErrMalformed is the error returned when a result is missing data or has
// data in an unexpected format.
var ErrMalformed = errors.New("malformed weather result")

var pressureStates = [...]string{"steady", "rising", "falling"}

var conditionTitle = regexp.MustCompile(`(?i)^Conditions for (.+?) at ((\d+):(\d+) ([AP]M)) (.+)$`)

// Found reports whether r is a usable result. The service sometimes answers
// successfully with only units, so a result without a link is treated as a
// failed lookup.
func Found(r *Result) bool {
	return r != nil && r.Link != ""
}

// Conditions formats the current conditions of a result.
func Conditions(r *Result) (*message.Embed, error) {
	if !Found(r) {
		return nil, ErrNotFound
	}
	unit := Unit(r.Units.Temperature)
	m := conditionTitle.FindStringSubmatch(r.Item.Title)
	if m == nil {
		return nil, fmt.Errorf("%w: condition title %q", ErrMalformed, r.Item.Title)
	}
	clock, err := FormatTime(m[2], unit)
	if err != nil {
		return nil, err
	}
	tz := timezone(r.LastBuildDate, m[6])

	code, err := r.Item.Condition.Code.Int()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	icon, err := IconFor(code)
	if err != nil {
		return nil, err
	}
	desc, err := describe(r, icon)
	if err != nil {
		return nil, err
	}
	atm, err := atmosphere(r)
	if err != nil {
		return nil, err
	}
	wnd, err := wind(r)
	if err != nil {
		return nil, err
	}
	astro, err := astronomy(r, unit, tz)
	if err != nil {
		return nil, err
	}

	e := base(r)
	e.Title = fmt.Sprintf("Conditions for %s at %s %s", m[1], clock, tz)
	e.Thumbnail = icon.Thumbnail()
	e.Description = desc
	e.AddField("Atmosphere", atm, true)
	e.AddField("Wind", wnd, true)
	e.AddField("Astronomy", astro, true)
	return e, nil
}

// Forecast formats the daily forecast of a result.
func Forecast(r *Result) (*message.Embed, error) {
	if !Found(r) {
		return nil, ErrNotFound
	}
	u := r.Units.Temperature
	e := base(r)
	e.Title = "10-day Weather Forecast for " + strings.TrimPrefix(r.Title, titlePrefix)
	for _, d := range r.Item.Forecast {
		code, err := d.Code.Int()
		if err != nil {
			return nil, fmt.Errorf("%w: forecast for %s: %w", ErrMalformed, d.Date, err)
		}
		icon, err := IconFor(code)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%s (%s)", d.Day, shortDate(d.Date))
		val := fmt.Sprintf("%s%s\nHigh: `%s° %s`\nLow: `%s° %s`", icon.Prefix(), d.Text, d.High, u, d.Low, u)
		e.AddField(name, val, true)
	}
	return e, nil
}

func base(r *Result) *message.Embed {
	link := r.Link
	// Strip the RSS tracking URL.
	if k := strings.LastIndexByte(link, '*'); k >= 0 {
		link = link[k+1:]
	}
	return &message.Embed{
		URL:   link,
		Color: Color,
		Author: &message.Author{
			Name: authorName,
			URL:  authorURL,
			Icon: authorIcon,
		},
	}
}

// timezone extracts the time zone abbreviation from the build date, which
// ends with it. If the build date is too short, it falls back to the zone
// from the condition title.
func timezone(built, fallback string) string {
	if len(built) < 3 {
		return fallback
	}
	return built[len(built)-3:]
}

func shortDate(d string) string {
	if len(d) > 6 {
		return d[:6]
	}
	return d
}

func describe(r *Result, icon Icon) (string, error) {
	if len(r.Item.Forecast) == 0 {
		return "", fmt.Errorf("%w: no forecast for today", ErrMalformed)
	}
	today := r.Item.Forecast[0]
	unit := Unit(r.Units.Temperature)
	temp, err := r.Item.Condition.Temp.Float()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	alt, err := Convert(temp, unit)
	if err != nil {
		return "", err
	}
	altUnit, err := unit.Other()
	if err != nil {
		return "", err
	}
	s := fmt.Sprintf("%s%s° %s - %s (%s° %s)\nHigh: `%s° %s`\nLow: `%s° %s`",
		icon.Prefix(), r.Item.Condition.Temp, r.Units.Temperature, r.Item.Condition.Text,
		strconv.FormatFloat(alt, 'f', 1, 64), altUnit.Label(),
		today.High, r.Units.Temperature,
		today.Low, r.Units.Temperature,
	)
	return s, nil
}

func atmosphere(r *Result) (string, error) {
	a := r.Atmosphere
	k, err := a.Rising.Int()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if k < 0 || k >= len(pressureStates) {
		return "", fmt.Errorf("%w: pressure state %d", ErrMalformed, k)
	}
	s := fmt.Sprintf("Humidity: `%s%%`\nPressure: `%s %s` (%s)\nVisibility: `%s %s`",
		a.Humidity, a.Pressure, r.Units.Pressure, pressureStates[k], a.Visibility, r.Units.Distance)
	return s, nil
}

func wind(r *Result) (string, error) {
	w := r.Wind
	deg, err := w.Direction.Float()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	s := fmt.Sprintf("`%s°` (%s) at `%s %s`\nWind chill: `%s`",
		w.Direction, Cardinal(deg), w.Speed, r.Units.Speed, w.Chill)
	return s, nil
}

func astronomy(r *Result, u Unit, tz string) (string, error) {
	rise, err := FormatTime(r.Astronomy.Sunrise, u)
	if err != nil {
		return "", err
	}
	set, err := FormatTime(r.Astronomy.Sunset, u)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Sunrise: `%s %s`\nSunset: `%s %s`", rise, tz, set, tz), nil
}
