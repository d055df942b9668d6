package store

import (
	"testing"
	"time"

	"github.com/chrissnell/aprsingest/internal/callsign"
	"github.com/chrissnell/aprsingest/internal/geo"
	"github.com/chrissnell/aprsingest/internal/packet"
)

func TestToRowFromRowRoundTrip(t *testing.T) {
	sender, err := callsign.Parse("N0CALL-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dest, err := callsign.Parse("APRS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coord, err := geo.NewCoordinate(37.5, -122.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	speed := 12.5
	course := 270
	temp := 72
	symTable := byte('/')
	symCode := byte('-')
	sentTime := time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)

	p := packet.Packet{
		Sender:      sender,
		Destination: dest,
		Path:        "WIDE1-1,WIDE2-1",
		Type:        packet.TypeWeather,
		Position:    &coord,
		Speed:       &speed,
		Course:      &course,
		Weather:     &packet.WeatherData{Temperature: &temp},
		SentTime:    &sentTime,
		ReceivedAt:  time.Date(2026, time.July, 30, 12, 0, 5, 0, time.UTC),
		RawContent:  "N0CALL-9>APRS:!4930.00N/12200.00W_000/000t072",
		Comment:     "test comment",
		SymbolTable: &symTable,
		SymbolCode:  &symCode,
	}

	row := toRow(p)
	back, err := fromRow(row)
	if err != nil {
		t.Fatalf("fromRow() unexpected error: %v", err)
	}

	if back.Sender.Value() != p.Sender.Value() {
		t.Errorf("Sender = %q, want %q", back.Sender.Value(), p.Sender.Value())
	}
	if back.Destination.Value() != p.Destination.Value() {
		t.Errorf("Destination = %q, want %q", back.Destination.Value(), p.Destination.Value())
	}
	if back.Type != p.Type {
		t.Errorf("Type = %v, want %v", back.Type, p.Type)
	}
	if back.Position == nil || back.Position.Lat() != p.Position.Lat() || back.Position.Lon() != p.Position.Lon() {
		t.Errorf("Position = %v, want %v", back.Position, p.Position)
	}
	if back.Speed == nil || *back.Speed != speed {
		t.Errorf("Speed = %v, want %v", back.Speed, speed)
	}
	if back.Course == nil || *back.Course != course {
		t.Errorf("Course = %v, want %v", back.Course, course)
	}
	if back.Weather == nil || back.Weather.Temperature == nil || *back.Weather.Temperature != temp {
		t.Errorf("Weather.Temperature = %v, want %v", back.Weather, temp)
	}
	if back.SentTime == nil || !back.SentTime.Equal(sentTime) {
		t.Errorf("SentTime = %v, want %v", back.SentTime, sentTime)
	}
	if !back.ReceivedAt.Equal(p.ReceivedAt) {
		t.Errorf("ReceivedAt = %v, want %v", back.ReceivedAt, p.ReceivedAt)
	}
	if back.RawContent != p.RawContent {
		t.Errorf("RawContent = %q, want %q", back.RawContent, p.RawContent)
	}
	if back.Comment != p.Comment {
		t.Errorf("Comment = %q, want %q", back.Comment, p.Comment)
	}
	if back.SymbolTable == nil || *back.SymbolTable != symTable {
		t.Errorf("SymbolTable = %v, want %v", back.SymbolTable, symTable)
	}
	if back.SymbolCode == nil || *back.SymbolCode != symCode {
		t.Errorf("SymbolCode = %v, want %v", back.SymbolCode, symCode)
	}
}

func TestToRowFromRowRoundTripWithoutOptionalFields(t *testing.T) {
	sender, err := callsign.Parse("N0CALL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := packet.Packet{
		Sender:     sender,
		Path:       "APRS",
		Type:       packet.TypeMessage,
		ReceivedAt: time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC),
		RawContent: "N0CALL>APRS::N0CALL   :hi",
	}

	row := toRow(p)
	back, err := fromRow(row)
	if err != nil {
		t.Fatalf("fromRow() unexpected error: %v", err)
	}

	if !back.Destination.IsZero() {
		t.Errorf("Destination = %v, want zero value", back.Destination)
	}
	if back.Position != nil {
		t.Errorf("Position = %v, want nil", back.Position)
	}
	if back.Weather != nil {
		t.Errorf("Weather = %v, want nil", back.Weather)
	}
	if back.SentTime != nil {
		t.Errorf("SentTime = %v, want nil", back.SentTime)
	}
	if back.SymbolTable != nil || back.SymbolCode != nil {
		t.Errorf("SymbolTable/SymbolCode = %v/%v, want nil/nil", back.SymbolTable, back.SymbolCode)
	}
}
