package aprs

import "testing"

func TestParseWeatherAllFields(t *testing.T) {
	wx := parseWeather("c220s004g005t077r000p000P000h50b10197")
	if wx == nil {
		t.Fatal("parseWeather() = nil, want non-nil")
	}
	cases := map[string]*int{
		"WindDirection": wx.WindDirection,
		"WindSpeed":     wx.WindSpeed,
		"WindGust":      wx.WindGust,
		"Temperature":   wx.Temperature,
		"Rain1h":        wx.Rain1h,
		"Rain24h":       wx.Rain24h,
		"RainMidnight":  wx.RainMidnight,
		"Humidity":      wx.Humidity,
		"Pressure":      wx.Pressure,
	}
	for name, v := range cases {
		if v == nil {
			t.Errorf("%s = nil, want set", name)
		}
	}
	if *wx.WindDirection != 220 {
		t.Errorf("WindDirection = %d, want 220", *wx.WindDirection)
	}
	if *wx.Temperature != 77 {
		t.Errorf("Temperature = %d, want 77", *wx.Temperature)
	}
	if *wx.Pressure != 10197 {
		t.Errorf("Pressure = %d, want 10197", *wx.Pressure)
	}
	if *wx.Humidity != 50 {
		t.Errorf("Humidity = %d, want 50", *wx.Humidity)
	}
}

func TestParseWeatherWindPairFallback(t *testing.T) {
	wx := parseWeather("220/004g010t050")
	if wx == nil {
		t.Fatal("parseWeather() = nil, want non-nil")
	}
	if wx.WindDirection == nil || *wx.WindDirection != 220 {
		t.Errorf("WindDirection = %v, want 220", wx.WindDirection)
	}
	if wx.WindSpeed == nil || *wx.WindSpeed != 4 {
		t.Errorf("WindSpeed = %v, want 4", wx.WindSpeed)
	}
}

func TestParseWeatherNoFieldsReturnsNil(t *testing.T) {
	wx := parseWeather("this comment has no weather fields at all")
	if wx != nil {
		t.Errorf("parseWeather() = %+v, want nil", wx)
	}
}
