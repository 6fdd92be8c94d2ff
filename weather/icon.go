package weather

import (
	"errors"
	"fmt"
)

// Icon is the presentation of a weather condition.
type Icon struct {
	// ID is an OpenWeatherMap icon ID.
	ID string
	// Emoji is a single emoji depicting the condition.
	Emoji string
}

// NotAvailable is the condition code the weather service uses when it has no
// condition to report.
const NotAvailable = 3200

// ErrUnknownCondition is the error returned for condition codes outside the
// icon table.
var ErrUnknownCondition = errors.New("unknown condition code")

// icons maps Yahoo condition codes to OpenWeatherMap icons and emoji.
var icons = [...]Icon{
	{"50d", "🌪️"}, {"11d", "⛈️"}, {"50d", "🌀"}, {"11d", "⛈️"},
	{"11d", "🌩️"}, {"13d", "🌨️"}, {"13d", "🌨️"}, {"13d", "🌨️"},
	{"09d", "💧"}, {"09d", "💧"}, {"09d", "🌧️"}, {"09d", "🌧️"},
	{"09d", "🌧️"}, {"13d", "🌨️"}, {"13d", "🌨️"}, {"13d", "🌨️"},
	{"13d", "🌨️"}, {"09d", "🌧️"}, {"13d", "🌨️"}, {"50d", "💨"},
	{"50d", "🌫️"}, {"50d", "🌫️"}, {"50d", "💨"}, {"50d", "💨"},
	{"50d", "💨"}, {"13d", "❄️"}, {"03d", "☁️"}, {"02n", "☁️"},
	{"02d", "🌥️"}, {"02n", "☁️"}, {"02d", "⛅"}, {"01n", "🌙"},
	{"01d", "☀️"}, {"01n", "🌙"}, {"01d", "🌤️"}, {"09d", "🌧️"},
	{"01d", "♨️"}, {"11d", "🌩️"}, {"11d", "🌩️"}, {"11d", "🌩️"},
	{"09d", "🌦️"}, {"13d", "🌨️"}, {"13d", "🌨️"}, {"13d", "🌨️"},
	{"04d", "☁️"}, {"11d", "🌩️"}, {"13d", "🌨️"}, {"11d", "🌩️"},
}

// IconFor resolves a condition code. The not-available code resolves to the
// zero Icon.
func IconFor(code int) (Icon, error) {
	if code == NotAvailable {
		return Icon{}, nil
	}
	if code < 0 || code >= len(icons) {
		return Icon{}, fmt.Errorf("%w %d", ErrUnknownCondition, code)
	}
	return icons[code], nil
}

// Prefix is the emoji followed by a space, or the empty string if there is
// no emoji.
func (i Icon) Prefix() string {
	if i.Emoji == "" {
		return ""
	}
	return i.Emoji + " "
}

// Thumbnail is the URL of the icon image, or the empty string if there is no
// icon.
func (i Icon) Thumbnail() string {
	if i.ID == "" {
		return ""
	}
	return "http://openweathermap.org/img/w/" + i.ID + ".png"
}
