package packet

import "time"

// PositionDTO is the JSON shape of an embedded position.
type PositionDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherDTO is the JSON shape of an embedded weather reading.
type WeatherDTO struct {
	WindDirection *int `json:"windDirection,omitempty"`
	WindSpeed     *int `json:"windSpeed,omitempty"`
	WindGust      *int `json:"windGust,omitempty"`
	Temperature   *int `json:"temperature,omitempty"`
	Rain1h        *int `json:"rain1h,omitempty"`
	Rain24h       *int `json:"rain24h,omitempty"`
	RainMidnight  *int `json:"rainMidnight,omitempty"`
	Humidity      *int `json:"humidity,omitempty"`
	Pressure      *int `json:"pressure,omitempty"`
}

// DTO is the public JSON representation of a Packet, per the wire
// protocol's packet shape.
type DTO struct {
	ID          int64        `json:"id"`
	Sender      string       `json:"sender"`
	Destination string       `json:"destination,omitempty"`
	Path        string       `json:"path"`
	Type        string       `json:"type"`
	Position    *PositionDTO `json:"position,omitempty"`
	Speed       *float64     `json:"speed,omitempty"`
	Course      *int         `json:"course,omitempty"`
	Weather     *WeatherDTO  `json:"weather,omitempty"`
	SentTime    *time.Time   `json:"sentTime,omitempty"`
	ReceivedAt  time.Time    `json:"receivedAt"`
	RawContent  string       `json:"rawContent"`
	Comment     string       `json:"comment,omitempty"`
	SymbolTable string       `json:"symbolTable,omitempty"`
	SymbolCode  string       `json:"symbolCode,omitempty"`
}

// ToDTO flattens p into its public JSON representation.
func (p Packet) ToDTO() DTO {
	d := DTO{
		ID:         p.ID,
		Sender:     p.Sender.Value(),
		Path:       p.Path,
		Type:       string(p.Type),
		Speed:      p.Speed,
		Course:     p.Course,
		SentTime:   p.SentTime,
		ReceivedAt: p.ReceivedAt,
		RawContent: p.RawContent,
		Comment:    p.Comment,
	}
	if !p.Destination.IsZero() {
		d.Destination = p.Destination.Value()
	}
	if p.Position != nil {
		d.Position = &PositionDTO{Latitude: p.Position.Lat(), Longitude: p.Position.Lon()}
	}
	if p.Weather != nil && !p.Weather.IsEmpty() {
		d.Weather = &WeatherDTO{
			WindDirection: p.Weather.WindDirection,
			WindSpeed:     p.Weather.WindSpeed,
			WindGust:      p.Weather.WindGust,
			Temperature:   p.Weather.Temperature,
			Rain1h:        p.Weather.Rain1h,
			Rain24h:       p.Weather.Rain24h,
			RainMidnight:  p.Weather.RainMidnight,
			Humidity:      p.Weather.Humidity,
			Pressure:      p.Weather.Pressure,
		}
	}
	if p.SymbolTable != nil {
		d.SymbolTable = string(*p.SymbolTable)
	}
	if p.SymbolCode != nil {
		d.SymbolCode = string(*p.SymbolCode)
	}
	return d
}
