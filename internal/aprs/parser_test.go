package aprs

import (
	"math"
	"testing"
	"time"

	"github.com/chrissnell/aprsingest/internal/packet"
)

var fixedNow = time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)

func TestParseFrameLevelFailure(t *testing.T) {
	_, err := Parse("not a valid frame", fixedNow)
	if err == nil {
		t.Fatal("Parse() with no SENDER>DEST:PAYLOAD shape = nil error, want error")
	}
}

func TestParseInvalidSenderCallsign(t *testing.T) {
	_, err := Parse("1>APRS:hello", fixedNow)
	if err == nil {
		t.Fatal("Parse() with a malformed sender callsign = nil error, want error")
	}
}

func TestParseUncompressedPosition(t *testing.T) {
	p, err := Parse("N0CALL>APRS:!4903.50N/07201.75W-Test", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != packet.TypePositionWithoutTimestamp {
		t.Errorf("Type = %v, want %v", p.Type, packet.TypePositionWithoutTimestamp)
	}
	if p.Position == nil {
		t.Fatal("Position = nil, want set")
	}
	if math.Abs(p.Position.Lat()-49.058333) > 1e-5 {
		t.Errorf("Lat() = %v, want ~49.058333", p.Position.Lat())
	}
	if math.Abs(p.Position.Lon()-(-72.029167)) > 1e-5 {
		t.Errorf("Lon() = %v, want ~-72.029167", p.Position.Lon())
	}
	if p.Comment != "Test" {
		t.Errorf("Comment = %q, want %q", p.Comment, "Test")
	}
}

func TestParseTimestampedPosition(t *testing.T) {
	p, err := Parse("N0CALL>APRS:/092345z4903.50N/07201.75W>Test", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != packet.TypePositionWithTimestamp {
		t.Errorf("Type = %v, want %v", p.Type, packet.TypePositionWithTimestamp)
	}
	if p.SentTime == nil {
		t.Fatal("SentTime = nil, want set")
	}
	if p.SentTime.Day() != 9 || p.SentTime.Hour() != 23 || p.SentTime.Minute() != 45 {
		t.Errorf("SentTime = %v, want day=9 hour=23 minute=45", p.SentTime)
	}
}

func TestParseMessage(t *testing.T) {
	p, err := Parse("N0CALL>APRS::N0CALL   :Hello", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != packet.TypeMessage {
		t.Errorf("Type = %v, want %v", p.Type, packet.TypeMessage)
	}
	if p.Comment != "N0CALL   :Hello" {
		t.Errorf("Comment = %q, want %q", p.Comment, "N0CALL   :Hello")
	}
}

func TestParseStatus(t *testing.T) {
	p, err := Parse("N0CALL>APRS:>Status text", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != packet.TypeStatus {
		t.Errorf("Type = %v, want %v", p.Type, packet.TypeStatus)
	}
	if p.Comment != "Status text" {
		t.Errorf("Comment = %q, want %q", p.Comment, "Status text")
	}
}

func TestParseMaidenheadBeacon(t *testing.T) {
	p, err := Parse("N0CALL>APRS:[CM87 test", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != packet.TypePositionWithoutTimestamp {
		t.Errorf("Type = %v, want %v", p.Type, packet.TypePositionWithoutTimestamp)
	}
	if p.Position == nil {
		t.Fatal("Position = nil, want set")
	}
	if p.Comment != " test" {
		t.Errorf("Comment = %q, want %q", p.Comment, " test")
	}
}

func TestParseMaidenheadBeaconClosingBracketNotKeptInComment(t *testing.T) {
	p, err := Parse("N0CALL>APRS:[CM87]Test comment", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Comment != "Test comment" {
		t.Errorf("Comment = %q, want %q (closing bracket stripped)", p.Comment, "Test comment")
	}
}

func TestParsePositionlessWeather(t *testing.T) {
	raw := "N0CALL>APRS:_10090556c220s004g005t077r000p000P000h50b10197Test"
	p, err := Parse(raw, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != packet.TypeWeather {
		t.Errorf("Type = %v, want %v", p.Type, packet.TypeWeather)
	}
	if p.Weather == nil {
		t.Fatal("Weather = nil, want set")
	}
	if p.Weather.Temperature == nil || *p.Weather.Temperature != 77 {
		t.Errorf("Temperature = %v, want 77", p.Weather.Temperature)
	}
	if p.Weather.WindDirection == nil || *p.Weather.WindDirection != 220 {
		t.Errorf("WindDirection = %v, want 220", p.Weather.WindDirection)
	}
	if p.Weather.Pressure == nil || *p.Weather.Pressure != 10197 {
		t.Errorf("Pressure = %v, want 10197", p.Weather.Pressure)
	}
}

func TestParseUnrecognizedPayloadDowngradesToComment(t *testing.T) {
	p, err := Parse("N0CALL>APRS:*weird payload", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != packet.TypeUnknown {
		t.Errorf("Type = %v, want %v", p.Type, packet.TypeUnknown)
	}
	if p.Comment != "*weird payload" {
		t.Errorf("Comment = %q, want %q", p.Comment, "*weird payload")
	}
}

func TestParseEmptyPayload(t *testing.T) {
	p, err := Parse("N0CALL>APRS:", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != packet.TypeUnknown {
		t.Errorf("Type = %v, want %v", p.Type, packet.TypeUnknown)
	}
}

func TestParseMalformedDestFallsBackToZeroDest(t *testing.T) {
	p, err := Parse("N0CALL>1:hello", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Destination.IsZero() {
		t.Errorf("Destination = %v, want zero value", p.Destination)
	}
}
