package weather

import "math"

var cardinals = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Cardinal gives the 16-point compass label nearest to a bearing in degrees.
// Any finite bearing is accepted; it is reduced modulo 360 first.
func Cardinal(deg float64) string {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	i := int(math.Floor(d/22.5+0.5)) % len(cardinals)
	return cardinals[i]
}
