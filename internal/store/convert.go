package store

import (
	"github.com/chrissnell/aprsingest/internal/callsign"
	"github.com/chrissnell/aprsingest/internal/geo"
	"github.com/chrissnell/aprsingest/internal/packet"
)

func toRow(p packet.Packet) PacketRow {
	row := PacketRow{
		SenderCallsign: p.Sender.Value(),
		SenderBase:     p.Sender.Base(),
		SenderSSID:     p.Sender.SSID(),
		Path:           p.Path,
		Type:           string(p.Type),
		Speed:          p.Speed,
		Course:         p.Course,
		SentTime:       p.SentTime,
		ReceivedAt:     p.ReceivedAt,
		RawContent:     p.RawContent,
		Comment:        p.Comment,
	}

	if !p.Destination.IsZero() {
		dc, db, ds := p.Destination.Value(), p.Destination.Base(), p.Destination.SSID()
		row.DestCallsign = &dc
		row.DestBase = &db
		row.DestSSID = &ds
	}

	if p.Position != nil {
		lat, lon := p.Position.Lat(), p.Position.Lon()
		row.Latitude = &lat
		row.Longitude = &lon
	}

	if p.Weather != nil {
		row.WxWindDirection = p.Weather.WindDirection
		row.WxWindSpeed = p.Weather.WindSpeed
		row.WxWindGust = p.Weather.WindGust
		row.WxTemperature = p.Weather.Temperature
		row.WxRain1h = p.Weather.Rain1h
		row.WxRain24h = p.Weather.Rain24h
		row.WxRainMidnight = p.Weather.RainMidnight
		row.WxHumidity = p.Weather.Humidity
		row.WxPressure = p.Weather.Pressure
	}

	if p.SymbolTable != nil {
		s := string(*p.SymbolTable)
		row.SymbolTable = &s
	}
	if p.SymbolCode != nil {
		s := string(*p.SymbolCode)
		row.SymbolCode = &s
	}

	return row
}

func fromRow(row PacketRow) (packet.Packet, error) {
	sender, err := callsign.Parse(row.SenderCallsign)
	if err != nil {
		return packet.Packet{}, err
	}

	p := packet.Packet{
		ID:         row.ID,
		Sender:     sender,
		Path:       row.Path,
		Type:       packet.Type(row.Type),
		Speed:      row.Speed,
		Course:     row.Course,
		SentTime:   row.SentTime,
		ReceivedAt: row.ReceivedAt,
		RawContent: row.RawContent,
		Comment:    row.Comment,
	}

	if row.DestCallsign != nil {
		dest, err := callsign.Parse(*row.DestCallsign)
		if err == nil {
			p.Destination = dest
		}
	}

	if row.Latitude != nil && row.Longitude != nil {
		coord, err := geo.NewCoordinate(*row.Latitude, *row.Longitude)
		if err == nil {
			p.Position = &coord
		}
	}

	wx := packet.WeatherData{
		WindDirection: row.WxWindDirection,
		WindSpeed:     row.WxWindSpeed,
		WindGust:      row.WxWindGust,
		Temperature:   row.WxTemperature,
		Rain1h:        row.WxRain1h,
		Rain24h:       row.WxRain24h,
		RainMidnight:  row.WxRainMidnight,
		Humidity:      row.WxHumidity,
		Pressure:      row.WxPressure,
	}
	if !wx.IsEmpty() {
		p.Weather = &wx
	}

	if row.SymbolTable != nil && len(*row.SymbolTable) > 0 {
		b := (*row.SymbolTable)[0]
		p.SymbolTable = &b
	}
	if row.SymbolCode != nil && len(*row.SymbolCode) > 0 {
		b := (*row.SymbolCode)[0]
		p.SymbolCode = &b
	}

	return p, nil
}
