// Package aprs decodes TNC2-format APRS-IS text lines into packet.Packet
// values. The parser is pure and deterministic given its inputs; the
// caller-supplied "now" hint only fills in the date parts that an
// embedded timestamp leaves out. Malformed fields downgrade a packet's
// type to Unknown rather than rejecting the whole line; only a
// frame-level mismatch or an invalid sender callsign fails outright.
package aprs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/aprsingest/internal/apperr"
	"github.com/chrissnell/aprsingest/internal/callsign"
	"github.com/chrissnell/aprsingest/internal/geo"
	"github.com/chrissnell/aprsingest/internal/packet"
)

var frameRE = regexp.MustCompile(`^([^>]+)>([^:]+):(.*)$`)

// Parse decodes a single raw TNC2 line, using now as the hint for any
// timestamp embedded in the payload that omits a full date. It returns a
// FormatError when the line fails the frame-level split or its sender is
// not a valid callsign; all other decode failures downgrade the
// resulting packet's Type to Unknown.
func Parse(raw string, now time.Time) (packet.Packet, error) {
	m := frameRE.FindStringSubmatch(raw)
	if m == nil {
		return packet.Packet{}, apperr.FormatError(fmt.Sprintf("does not match SENDER>DEST,PATH:PAYLOAD: %q", raw))
	}

	senderRaw, destPath, payload := m[1], m[2], m[3]

	sender, err := callsign.Parse(senderRaw)
	if err != nil {
		return packet.Packet{}, apperr.FormatError(fmt.Sprintf("invalid sender callsign: %v", err))
	}

	destRaw := destPath
	if idx := strings.IndexByte(destPath, ','); idx >= 0 {
		destRaw = destPath[:idx]
	}
	dest, err := callsign.Parse(destRaw)
	if err != nil {
		dest = callsign.Callsign{}
	}

	p := packet.New(sender, dest, destPath, packet.TypeUnknown, raw)

	if len(payload) == 0 {
		return p, nil
	}

	switch payload[0] {
	case '!', '=':
		decodeUncompressedPositionPacket(&p, payload[1:], now, payload[0] == '=')
	case '/', '@':
		decodeTimestampedPositionPacket(&p, payload[1:], now)
	case ':':
		p.Type = packet.TypeMessage
		p.Comment = payload[1:]
	case '>':
		p.Type = packet.TypeStatus
		p.Comment = payload[1:]
	case '[':
		decodeMaidenheadBeacon(&p, payload[1:])
	case '_':
		decodePositionlessWeather(&p, payload[1:], now)
	case '`', '\'', 0x1c, 0x1d:
		decodeMicEPacket(&p, destRaw, payload)
	default:
		p.Comment = payload
	}

	return p, nil
}

func decodeUncompressedPositionPacket(p *packet.Packet, rest string, now time.Time, messaging bool) {
	_ = messaging // messaging capability does not affect decode, only §6.1 semantics
	applyPosition(p, rest, packet.TypePositionWithoutTimestamp)
}

func decodeTimestampedPositionPacket(p *packet.Packet, rest string, now time.Time) {
	sent, remainder, ok := decodeTimestamp(rest, now)
	if !ok {
		p.Comment = rest
		return
	}
	p.SentTime = sent
	applyPosition(p, remainder, packet.TypePositionWithTimestamp)
}

var posRE = regexp.MustCompile(`^([0-9 .NS]{8})(.)([0-9 .EW]{9})(.)(.*)$`)
var courseSpeedRE = regexp.MustCompile(`^([0-9]{3})/([0-9]{3})`)

func applyPosition(p *packet.Packet, rest string, typ packet.Type) {
	m := posRE.FindStringSubmatch(rest)
	if m == nil {
		p.Comment = rest
		return
	}

	latRaw, symTable, lonRaw, symCode, comment := m[1], m[2][0], m[3], m[4][0], m[5]

	lat, err := decodeLatitude(latRaw)
	if err != nil {
		p.Comment = rest
		return
	}
	lon, err := decodeLongitude(lonRaw)
	if err != nil {
		p.Comment = rest
		return
	}

	coord, err := geo.NewCoordinate(lat, lon)
	if err != nil {
		p.Comment = rest
		return
	}

	p.Type = typ
	p.Position = &coord
	p.SymbolTable = &symTable
	p.SymbolCode = &symCode
	p.Comment = comment

	if cs := courseSpeedRE.FindStringSubmatch(comment); cs != nil {
		course, cErr := strconv.Atoi(cs[1])
		speedKnots, sErr := strconv.Atoi(cs[2])
		if cErr == nil && sErr == nil {
			speed := float64(speedKnots)
			p.WithSpeedCourse(&speed, &course)
		}
	}

	// Loose heuristic: any comment containing "g0" or "t0" is run through
	// the weather decoder, so unrelated text with those substrings can
	// also be typed as weather.
	if symCode == '_' || strings.Contains(comment, "g0") || strings.Contains(comment, "t0") {
		wx := parseWeather(comment)
		if wx != nil && (wx.Temperature != nil || wx.WindSpeed != nil) {
			p.Type = packet.TypeWeather
			p.Weather = wx
		}
	}
}

func decodeLatitude(raw string) (float64, error) {
	if len(raw) != 8 {
		return 0, apperr.FormatError("latitude field must be 8 characters")
	}
	deg, err := strconv.Atoi(raw[0:2])
	if err != nil {
		return 0, apperr.FormatError("invalid latitude degrees")
	}
	min, err := strconv.ParseFloat(raw[2:7], 64)
	if err != nil {
		return 0, apperr.FormatError("invalid latitude minutes")
	}
	hemi := raw[7]
	lat := float64(deg) + min/60
	switch hemi {
	case 'N':
	case 'S':
		lat = -lat
	default:
		return 0, apperr.FormatError("invalid latitude hemisphere")
	}
	return lat, nil
}

func decodeLongitude(raw string) (float64, error) {
	if len(raw) != 9 {
		return 0, apperr.FormatError("longitude field must be 9 characters")
	}
	deg, err := strconv.Atoi(raw[0:3])
	if err != nil {
		return 0, apperr.FormatError("invalid longitude degrees")
	}
	min, err := strconv.ParseFloat(raw[3:8], 64)
	if err != nil {
		return 0, apperr.FormatError("invalid longitude minutes")
	}
	hemi := raw[8]
	lon := float64(deg) + min/60
	switch hemi {
	case 'E':
	case 'W':
		lon = -lon
	default:
		return 0, apperr.FormatError("invalid longitude hemisphere")
	}
	return lon, nil
}

var maidenheadPrefixRE = regexp.MustCompile(`^([A-Ra-r]{2}[0-9]{2}([A-Xa-x]{2}([0-9]{2})?)?)`)

func decodeMaidenheadBeacon(p *packet.Packet, rest string) {
	m := maidenheadPrefixRE.FindStringSubmatch(rest)
	if m == nil {
		p.Comment = rest
		return
	}
	grid := m[1]
	coord, err := geo.LocatorCenter(grid)
	if err != nil {
		p.Comment = rest
		return
	}
	p.Type = packet.TypePositionWithoutTimestamp
	p.Position = &coord

	comment := rest[len(grid):]
	comment = strings.TrimPrefix(comment, "]")
	p.Comment = comment
}

func decodePositionlessWeather(p *packet.Packet, rest string, now time.Time) {
	sent, remainder, ok := decodeTimestamp(rest, now)
	if !ok {
		p.Comment = rest
		return
	}
	p.SentTime = sent
	wx := parseWeather(remainder)
	if wx == nil || wx.IsEmpty() {
		p.Comment = remainder
		return
	}
	p.Type = packet.TypeWeather
	p.Weather = wx
	p.Comment = remainder
}
