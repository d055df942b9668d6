package aprs

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/chrissnell/aprsingest/internal/packet"
)

var (
	windDirRE  = regexp.MustCompile(`c([0-9.]{3})`)
	windSpdRE  = regexp.MustCompile(`s([0-9.]{3})`)
	windGustRE = regexp.MustCompile(`g([0-9.]{3})`)
	tempRE     = regexp.MustCompile(`t([0-9.]{3})`)
	rain1hRE   = regexp.MustCompile(`r([0-9.]{3})`)
	rain24hRE  = regexp.MustCompile(`p([0-9.]{3})`)
	rainMidRE  = regexp.MustCompile(`P([0-9.]{3})`)
	humidityRE = regexp.MustCompile(`h([0-9.]{2})`)
	pressureRE = regexp.MustCompile(`b([0-9.]{5})`)
	windPairRE = regexp.MustCompile(`([0-9]{3})/([0-9]{3})`)
)

// parseWeather scans s for the fixed-length numeric fields of a
// positionless or position-embedded weather report. Fields that are not
// present are left nil.
func parseWeather(s string) *packet.WeatherData {
	wx := &packet.WeatherData{}

	wx.WindDirection = matchIntField(windDirRE, s)
	wx.WindSpeed = matchIntField(windSpdRE, s)
	if wx.WindDirection == nil && wx.WindSpeed == nil {
		if m := windPairRE.FindStringSubmatch(s); m != nil {
			wx.WindDirection = parseIntField(m[1])
			wx.WindSpeed = parseIntField(m[2])
		}
	}

	wx.WindGust = matchIntField(windGustRE, s)
	wx.Temperature = matchIntField(tempRE, s)
	wx.Rain1h = matchIntField(rain1hRE, s)
	wx.Rain24h = matchIntField(rain24hRE, s)
	wx.RainMidnight = matchIntField(rainMidRE, s)
	wx.Humidity = matchIntField(humidityRE, s)
	wx.Pressure = matchIntField(pressureRE, s)

	if wx.IsEmpty() {
		return nil
	}
	return wx
}

func matchIntField(re *regexp.Regexp, s string) *int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return parseIntField(m[1])
}

func parseIntField(raw string) *int {
	raw = strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	n := int(v)
	return &n
}
