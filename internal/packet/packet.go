// Package packet defines the Packet aggregate root and its embedded
// value objects: weather readings and the dedup fingerprint. A Packet is
// produced once by the parser, enqueued, optionally persisted, broadcast,
// and never mutated thereafter.
package packet

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/chrissnell/aprsingest/internal/callsign"
	"github.com/chrissnell/aprsingest/internal/geo"
)

// Type enumerates the recognised packet kinds. Field-level decode
// failures downgrade a packet to Unknown rather than rejecting the frame.
type Type string

const (
	TypePositionWithoutTimestamp Type = "PositionWithoutTimestamp"
	TypePositionWithTimestamp    Type = "PositionWithTimestamp"
	TypeMessage                  Type = "Message"
	TypeTelemetry                Type = "Telemetry"
	TypeStatus                   Type = "Status"
	TypeObject                   Type = "Object"
	TypeItem                     Type = "Item"
	TypeWeather                  Type = "Weather"
	TypeMicE                     Type = "MicE"
	TypeUnknown                  Type = "Unknown"
)

// WeatherData is an immutable set of optional weather readings decoded
// from a positionless or position-embedded weather report.
type WeatherData struct {
	WindDirection *int // degrees, 0-360
	WindSpeed     *int // mph
	WindGust      *int // mph
	Temperature   *int // degrees F
	Rain1h        *int // hundredths of an inch
	Rain24h       *int // hundredths of an inch
	RainMidnight  *int // hundredths of an inch
	Humidity      *int // percent, 0-100
	Pressure      *int // tenths of a millibar
}

// IsEmpty reports whether no field of w carries a value.
func (w WeatherData) IsEmpty() bool {
	return w.WindDirection == nil && w.WindSpeed == nil && w.WindGust == nil &&
		w.Temperature == nil && w.Rain1h == nil && w.Rain24h == nil &&
		w.RainMidnight == nil && w.Humidity == nil && w.Pressure == nil
}

// Packet is the aggregate root produced by the parser. ID is zero until
// assigned by the store.
type Packet struct {
	ID          int64
	Sender      callsign.Callsign
	Destination callsign.Callsign // zero value when absent
	Path        string
	Type        Type
	Position    *geo.Coordinate
	Speed       *float64 // knots
	Course      *int     // degrees, 0-360
	Weather     *WeatherData
	SentTime    *time.Time // UTC
	ReceivedAt  time.Time  // UTC, assigned on construction
	RawContent  string
	Comment     string
	SymbolTable *byte
	SymbolCode  *byte
}

// New constructs a Packet, stamping ReceivedAt with the wall-clock
// instant of construction. It sets no speed or course; WithSpeedCourse
// applies the GPS-glitch filter to those.
func New(sender callsign.Callsign, dest callsign.Callsign, path string, typ Type, rawContent string) Packet {
	return Packet{
		Sender:      sender,
		Destination: dest,
		Path:        path,
		Type:        typ,
		RawContent:  rawContent,
		ReceivedAt:  time.Now().UTC(),
	}
}

// WithSpeedCourse applies the GPS-glitch filter: speed outside [0,3500]
// or course outside [0,360] is dropped to nil rather than rejecting the
// packet.
func (p *Packet) WithSpeedCourse(speed *float64, course *int) {
	if speed != nil {
		if *speed < 0 || *speed > 3500 {
			speed = nil
		}
	}
	if course != nil {
		if *course < 0 || *course > 360 {
			course = nil
		}
	}
	p.Speed = speed
	p.Course = course
}

// Fingerprint computes the dedup key for p: the first 64 bits (16 hex
// chars) of SHA-256 over "sender_value:raw_content".
func (p Packet) Fingerprint() string {
	return Fingerprint(p.Sender.Value(), p.RawContent)
}

// Fingerprint computes the dedup key for a given sender value and raw
// content string, independent of any constructed Packet.
func Fingerprint(senderValue, rawContent string) string {
	sum := sha256.Sum256([]byte(senderValue + ":" + rawContent))
	return hex.EncodeToString(sum[:8])
}
