// Package store provides the durable, indexed packet store: append plus
// filtered, paginated reads over persisted APRS packets, backed by
// gorm.io/gorm the way the teacher's internal/database package wraps
// TimescaleDB for weather readings.
package store

import (
	"time"
)

// PacketRow is the gorm model for the single Packets table described in
// §6.5. Embedded value objects (sender, destination, position, weather)
// are flattened into columns so the table stays index-friendly.
type PacketRow struct {
	ID int64 `gorm:"primaryKey;autoIncrement;column:id"`

	SenderCallsign string `gorm:"column:sender_callsign;not null;index"`
	SenderBase     string `gorm:"column:sender_base;not null"`
	SenderSSID     int    `gorm:"column:sender_ssid;not null"`

	DestCallsign *string `gorm:"column:dest_callsign"`
	DestBase     *string `gorm:"column:dest_base"`
	DestSSID     *int    `gorm:"column:dest_ssid"`

	Path string `gorm:"column:path"`
	Type string `gorm:"column:type;not null;index"`

	Latitude  *float64 `gorm:"column:latitude;index"`
	Longitude *float64 `gorm:"column:longitude;index"`

	Speed  *float64 `gorm:"column:speed"`
	Course *int     `gorm:"column:course"`

	WxWindDirection *int `gorm:"column:wx_wind_direction"`
	WxWindSpeed     *int `gorm:"column:wx_wind_speed"`
	WxWindGust      *int `gorm:"column:wx_wind_gust"`
	WxTemperature   *int `gorm:"column:wx_temperature"`
	WxRain1h        *int `gorm:"column:wx_rain_1h"`
	WxRain24h       *int `gorm:"column:wx_rain_24h"`
	WxRainMidnight  *int `gorm:"column:wx_rain_midnight"`
	WxHumidity      *int `gorm:"column:wx_humidity"`
	WxPressure      *int `gorm:"column:wx_pressure"`

	SentTime   *time.Time `gorm:"column:sent_time"`
	ReceivedAt time.Time  `gorm:"column:received_at;not null;index:,sort:desc"`

	RawContent string `gorm:"column:raw_content;not null"`
	Comment    string `gorm:"column:comment"`

	SymbolTable *string `gorm:"column:symbol_table"`
	SymbolCode  *string `gorm:"column:symbol_code"`
}

// TableName implements the GORM Tabler interface.
func (PacketRow) TableName() string { return "packets" }
