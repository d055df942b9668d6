package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/chrissnell/aprsingest/internal/apperr"
	"github.com/chrissnell/aprsingest/internal/packet"
	_ "modernc.org/sqlite"
)

// SQLite is a lightweight alternative Store backend for local
// development and single-node deployments that don't want a Postgres
// dependency. It speaks the same `packets` table layout via raw SQL
// rather than gorm, since modernc.org/sqlite is a database/sql driver
// with no gorm dialect in the dependency set.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and creates, if absent) the sqlite database at path
// and ensures the packets table exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperr.Internal("failed to open sqlite database", err)
	}
	db.SetMaxOpenConns(1) // sqlite serializes writers; avoid SQLITE_BUSY churn

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, apperr.Internal("failed to create packets table", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Ping verifies the underlying database file is reachable.
func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS packets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_callsign TEXT NOT NULL,
	sender_base TEXT NOT NULL,
	sender_ssid INTEGER NOT NULL,
	dest_callsign TEXT,
	dest_base TEXT,
	dest_ssid INTEGER,
	path TEXT,
	type TEXT NOT NULL,
	latitude REAL,
	longitude REAL,
	speed REAL,
	course INTEGER,
	wx_wind_direction INTEGER,
	wx_wind_speed INTEGER,
	wx_wind_gust INTEGER,
	wx_temperature INTEGER,
	wx_rain_1h INTEGER,
	wx_rain_24h INTEGER,
	wx_rain_midnight INTEGER,
	wx_humidity INTEGER,
	wx_pressure INTEGER,
	sent_time DATETIME,
	received_at DATETIME NOT NULL,
	raw_content TEXT NOT NULL,
	comment TEXT,
	symbol_table TEXT,
	symbol_code TEXT
);
CREATE INDEX IF NOT EXISTS idx_packets_sender_callsign ON packets(sender_callsign);
CREATE INDEX IF NOT EXISTS idx_packets_type ON packets(type);
CREATE INDEX IF NOT EXISTS idx_packets_received_at ON packets(received_at DESC);
CREATE INDEX IF NOT EXISTS idx_packets_latitude ON packets(latitude);
CREATE INDEX IF NOT EXISTS idx_packets_longitude ON packets(longitude);
`

// Add persists p and returns it with its assigned ID.
func (s *SQLite) Add(ctx context.Context, p packet.Packet) (packet.Packet, error) {
	row := toRow(p)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO packets (
			sender_callsign, sender_base, sender_ssid,
			dest_callsign, dest_base, dest_ssid,
			path, type, latitude, longitude, speed, course,
			wx_wind_direction, wx_wind_speed, wx_wind_gust, wx_temperature,
			wx_rain_1h, wx_rain_24h, wx_rain_midnight, wx_humidity, wx_pressure,
			sent_time, received_at, raw_content, comment, symbol_table, symbol_code
		) VALUES (?,?,?, ?,?,?, ?,?,?,?,?,?, ?,?,?,?, ?,?,?,?,?, ?,?,?,?,?,?)`,
		row.SenderCallsign, row.SenderBase, row.SenderSSID,
		row.DestCallsign, row.DestBase, row.DestSSID,
		row.Path, row.Type, row.Latitude, row.Longitude, row.Speed, row.Course,
		row.WxWindDirection, row.WxWindSpeed, row.WxWindGust, row.WxTemperature,
		row.WxRain1h, row.WxRain24h, row.WxRainMidnight, row.WxHumidity, row.WxPressure,
		row.SentTime, row.ReceivedAt, row.RawContent, row.Comment, row.SymbolTable, row.SymbolCode,
	)
	if err != nil {
		return packet.Packet{}, apperr.Internal("failed to persist packet", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return packet.Packet{}, apperr.Internal("failed to read assigned packet id", err)
	}
	row.ID = id

	return fromRow(row)
}

// GetByID returns the packet with the given id, or a NotFound error.
func (s *SQLite) GetByID(ctx context.Context, id int64) (packet.Packet, error) {
	row, err := s.scanOne(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return packet.Packet{}, apperr.NotFound("no packet with that id")
	}
	if err != nil {
		return packet.Packet{}, apperr.Internal("failed to read packet", err)
	}
	return fromRow(row)
}

// Search mirrors Postgres.Search's semantics over the same Filter type.
func (s *SQLite) Search(ctx context.Context, f Filter) ([]packet.Packet, int64, error) {
	where := "WHERE 1=1"
	args := []any{}

	if f.Sender != "" {
		where += " AND (sender_callsign = ? OR sender_base = ?)"
		args = append(args, f.Sender, f.Sender)
	}
	if f.Type != "" {
		where += " AND type = ?"
		args = append(args, f.Type)
	}
	if !f.From.IsZero() {
		where += " AND received_at >= ?"
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where += " AND received_at <= ?"
		args = append(args, f.To)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packets "+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("failed to count packets", err)
	}

	offset := (f.Page - 1) * f.PageSize
	queryArgs := append(append([]any{}, args...), f.PageSize, offset)
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" "+where+" ORDER BY received_at DESC, id DESC LIMIT ? OFFSET ?",
		queryArgs...)
	if err != nil {
		return nil, 0, apperr.Internal("failed to search packets", err)
	}
	defer rows.Close()

	var packets []packet.Packet
	for rows.Next() {
		row, err := s.scanRow(rows)
		if err != nil {
			return nil, 0, apperr.Internal("failed to scan packet row", err)
		}
		p, err := fromRow(row)
		if err != nil {
			continue
		}
		packets = append(packets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("failed to iterate packet rows", err)
	}

	return packets, total, nil
}

const selectColumns = `SELECT
	id, sender_callsign, sender_base, sender_ssid,
	dest_callsign, dest_base, dest_ssid,
	path, type, latitude, longitude, speed, course,
	wx_wind_direction, wx_wind_speed, wx_wind_gust, wx_temperature,
	wx_rain_1h, wx_rain_24h, wx_rain_midnight, wx_humidity, wx_pressure,
	sent_time, received_at, raw_content, comment, symbol_table, symbol_code
	FROM packets`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLite) scanOne(r rowScanner) (PacketRow, error) {
	return scanPacketRow(r)
}

func (s *SQLite) scanRow(r *sql.Rows) (PacketRow, error) {
	return scanPacketRow(r)
}

func scanPacketRow(r rowScanner) (PacketRow, error) {
	var row PacketRow
	var sentTime sql.NullTime
	var receivedAt time.Time

	err := r.Scan(
		&row.ID, &row.SenderCallsign, &row.SenderBase, &row.SenderSSID,
		&row.DestCallsign, &row.DestBase, &row.DestSSID,
		&row.Path, &row.Type, &row.Latitude, &row.Longitude, &row.Speed, &row.Course,
		&row.WxWindDirection, &row.WxWindSpeed, &row.WxWindGust, &row.WxTemperature,
		&row.WxRain1h, &row.WxRain24h, &row.WxRainMidnight, &row.WxHumidity, &row.WxPressure,
		&sentTime, &receivedAt, &row.RawContent, &row.Comment, &row.SymbolTable, &row.SymbolCode,
	)
	if err != nil {
		return PacketRow{}, err
	}
	if sentTime.Valid {
		row.SentTime = &sentTime.Time
	}
	row.ReceivedAt = receivedAt
	return row, nil
}
