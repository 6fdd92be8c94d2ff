package weather

import (
	_ "embed"
	"errors"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/a2/message"
)

//go:embed testdata/chicago.json
var chicagoJSON []byte

func chicago(t *testing.T) *Result {
	t.Helper()
	var r response
	if err := json.Unmarshal(chicagoJSON, &r); err != nil {
		t.Fatalf("couldn't decode testdata: %v", err)
	}
	return r.Query.Results.Channel
}

var yahoo = &message.Author{
	Name: "Yahoo! Weather",
	URL:  "https://www.yahoo.com/news/weather",
	Icon: "https://s.yimg.com/dh/ap/default/130909/y_200_a.png",
}

func TestConditions(t *testing.T) {
	got, err := Conditions(chicago(t))
	if err != nil {
		t.Fatalf("couldn't format: %v", err)
	}
	want := &message.Embed{
		Title:       "Conditions for Chicago, IL, US at 10:00 AM CST",
		URL:         "https://weather.yahoo.com/country/state/city-2379574/",
		Description: "☁️ 1° F - Cloudy (-17.2° C)\nHigh: `10° F`\nLow: `-2° F`",
		Color:       4194448,
		Author:      yahoo,
		Thumbnail:   "http://openweathermap.org/img/w/03d.png",
		Fields: []message.Field{
			{Name: "Atmosphere", Value: "Humidity: `79%`\nPressure: `1022.0 in` (steady)\nVisibility: `10.0 mi`", Inline: true},
			{Name: "Wind", Value: "`45°` (NE) at `11 mph`\nWind chill: `-18`", Inline: true},
			{Name: "Astronomy", Value: "Sunrise: `09:35 AM CST`\nSunset: `07:02 PM CST`", Inline: true},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("wrong result (+got/-want):\n%s", diff)
	}
}

func TestConditionsCelsius(t *testing.T) {
	r := &Result{
		Title:         "Yahoo! Weather - Singapore, SG",
		Link:          "https://weather.yahoo.com/singapore/",
		LastBuildDate: "Sun, 03 Mar 2019 04:21 PM SGT",
		Units:         Units{Distance: "km", Pressure: "mb", Speed: "km/h", Temperature: "C"},
		Wind:          Wind{Chill: "77", Direction: "200", Speed: "14.48"},
		Atmosphere:    Atmosphere{Humidity: "70", Pressure: "34202.0", Rising: "1", Visibility: "16.1"},
		Astronomy:     Astronomy{Sunrise: "7:5 am", Sunset: "0:15 am"},
		Item: Item{
			Title:     "Conditions for Singapore, SG at 04:00 PM SGT",
			Condition: Condition{Code: "3200", Temp: "22", Text: "Not Available"},
			Forecast:  []DayReport{{Code: "30", Date: "03 Mar 2019", Day: "Sun", High: "31", Low: "25", Text: "Partly Cloudy"}},
		},
	}
	got, err := Conditions(r)
	if err != nil {
		t.Fatalf("couldn't format: %v", err)
	}
	want := &message.Embed{
		Title:       "Conditions for Singapore, SG at 16:00 SGT",
		URL:         "https://weather.yahoo.com/singapore/",
		Description: "22° C - Not Available (71.6° F)\nHigh: `31° C`\nLow: `25° C`",
		Color:       4194448,
		Author:      yahoo,
		Fields: []message.Field{
			{Name: "Atmosphere", Value: "Humidity: `70%`\nPressure: `34202.0 mb` (rising)\nVisibility: `16.1 km`", Inline: true},
			{Name: "Wind", Value: "`200°` (SSW) at `14.48 km/h`\nWind chill: `77`", Inline: true},
			{Name: "Astronomy", Value: "Sunrise: `07:05 SGT`\nSunset: `00:15 SGT`", Inline: true},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("wrong result (+got/-want):\n%s", diff)
	}
}

func TestForecast(t *testing.T) {
	got, err := Forecast(chicago(t))
	if err != nil {
		t.Fatalf("couldn't format: %v", err)
	}
	want := &message.Embed{
		Title:  "10-day Weather Forecast for Chicago, IL, US",
		URL:    "https://weather.yahoo.com/country/state/city-2379574/",
		Color:  4194448,
		Author: yahoo,
		Fields: []message.Field{
			{Name: "Sun (03 Mar)", Value: "🌥️ Mostly Cloudy\nHigh: `10° F`\nLow: `-2° F`", Inline: true},
			{Name: "Mon (04 Mar)", Value: "🌨️ Snow\nHigh: `13° F`\nLow: `6° F`", Inline: true},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("wrong result (+got/-want):\n%s", diff)
	}
}

func TestFormatErrors(t *testing.T) {
	cases := []struct {
		name   string
		mangle func(r *Result)
		err    error
	}{
		{"no-link", func(r *Result) { r.Link = "" }, ErrNotFound},
		{"condition-code", func(r *Result) { r.Item.Condition.Code = "99" }, ErrUnknownCondition},
		{"condition-nan", func(r *Result) { r.Item.Condition.Code = "cloudy" }, ErrMalformed},
		{"condition-fraction", func(r *Result) { r.Item.Condition.Code = "26.7" }, ErrMalformed},
		{"condition-inf", func(r *Result) { r.Item.Condition.Code = "Inf" }, ErrMalformed},
		{"direction-nan", func(r *Result) { r.Wind.Direction = "NaN" }, ErrMalformed},
		{"direction-inf", func(r *Result) { r.Wind.Direction = "-Inf" }, ErrMalformed},
		{"temp-nan", func(r *Result) { r.Item.Condition.Temp = "NaN" }, ErrMalformed},
		{"title", func(r *Result) { r.Item.Title = "Weather in Chicago" }, ErrMalformed},
		{"rising", func(r *Result) { r.Atmosphere.Rising = "3" }, ErrMalformed},
		{"direction", func(r *Result) { r.Wind.Direction = "north" }, ErrMalformed},
		{"no-forecast", func(r *Result) { r.Item.Forecast = nil }, ErrMalformed},
		{"unit", func(r *Result) { r.Units.Temperature = "K" }, ErrUnsupportedUnit},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := chicago(t)
			c.mangle(r)
			e, err := Conditions(r)
			if !errors.Is(err, c.err) {
				t.Errorf("wrong error: want %v, got %v", c.err, err)
			}
			if e != nil {
				t.Errorf("unexpected embed %+v", e)
			}
		})
	}
	t.Run("forecast-fraction", func(t *testing.T) {
		r := chicago(t)
		r.Item.Forecast[0].Code = "26.7"
		if _, err := Forecast(r); !errors.Is(err, ErrMalformed) {
			t.Errorf("wrong error: want %v, got %v", ErrMalformed, err)
		}
	})
	t.Run("forecast-code", func(t *testing.T) {
		r := chicago(t)
		r.Item.Forecast[1].Code = "-3"
		if _, err := Forecast(r); !errors.Is(err, ErrUnknownCondition) {
			t.Errorf("wrong error: want %v, got %v", ErrUnknownCondition, err)
		}
	})
	t.Run("nil", func(t *testing.T) {
		if _, err := Forecast(nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("wrong error: want %v, got %v", ErrNotFound, err)
		}
	})
}

func TestNum(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Num
		err  bool
	}{
		{"string", `"45"`, "45", false},
		{"number", `45`, "45", false},
		{"float", `1022.5`, "1022.5", false},
		{"float-string", `"10.0"`, "10.0", false},
		{"spaces", `" 7 "`, "7", false},
		{"null", `null`, "", false},
		{"bool", `true`, "", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var n Num
			err := n.UnmarshalJSON([]byte(c.in))
			if (err != nil) != c.err {
				t.Errorf("wrong error: want error %t, got %v", c.err, err)
			}
			if n != c.want {
				t.Errorf("wrong value: want %q, got %q", c.want, n)
			}
		})
	}
	t.Run("int", func(t *testing.T) {
		ints := []struct {
			in   Num
			want int
			ok   bool
		}{
			{"26", 26, true},
			{"-3", -3, true},
			{"26.0", 26, true},
			{"26.7", 0, false},
			{"NaN", 0, false},
			{"Inf", 0, false},
			{"1e300", 0, false},
			{"", 0, false},
		}
		for _, c := range ints {
			got, err := c.in.Int()
			if (err == nil) != c.ok || got != c.want {
				t.Errorf("wrong result for %q: want %d (ok %t), got %d (%v)", c.in, c.want, c.ok, got, err)
			}
		}
	})
	t.Run("decode", func(t *testing.T) {
		var w Wind
		if err := json.Unmarshal([]byte(`{"chill":-18,"direction":"45","speed":11.5}`), &w); err != nil {
			t.Fatal(err)
		}
		want := Wind{Chill: "-18", Direction: "45", Speed: "11.5"}
		if w != want {
			t.Errorf("wrong wind: want %+v, got %+v", want, w)
		}
		d, err := w.Direction.Int()
		if err != nil || d != 45 {
			t.Errorf("wrong direction: want 45, got %d (%v)", d, err)
		}
	})
}
