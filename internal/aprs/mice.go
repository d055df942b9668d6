package aprs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chrissnell/aprsingest/internal/apperr"
	"github.com/chrissnell/aprsingest/internal/geo"
	"github.com/chrissnell/aprsingest/internal/packet"
)

func decodeMicEPacket(p *packet.Packet, destRaw string, payload string) {
	coord, speed, course, symTable, symCode, comment, err := decodeMicE(destRaw, payload)
	if err != nil {
		p.Comment = payload
		return
	}
	p.Type = packet.TypeMicE
	p.Position = &coord
	p.SymbolTable = &symTable
	p.SymbolCode = &symCode
	p.Comment = comment
	sp := speed
	co := course
	p.WithSpeedCourse(&sp, &co)
}

// decodeMicE decodes the 6-byte destination address and the first 9
// bytes of the information field (including the leading type byte) per
// the Mic-E encoding. Any decode failure is reported as an error; the
// caller treats this as a parse miss rather than a frame-level failure.
func decodeMicE(destRaw string, payload string) (coord geo.Coordinate, speed float64, course int, symTable, symCode byte, comment string, err error) {
	base := destRaw
	if idx := strings.IndexByte(base, '-'); idx >= 0 {
		base = base[:idx]
	}
	base = strings.ToUpper(base)
	if len(base) != 6 {
		return coord, 0, 0, 0, 0, "", apperr.FormatError("mic-e destination must be 6 characters")
	}

	digits := make([]byte, 6)
	for i := 0; i < 6; i++ {
		c := base[i]
		switch {
		case c >= '0' && c <= '9':
			digits[i] = c
		case c == 'K' || c == 'L' || c == 'Z':
			digits[i] = ' '
		case c >= 'A' && c <= 'J':
			digits[i] = '0' + (c - 'A')
		case c >= 'P' && c <= 'Y':
			digits[i] = '0' + (c - 'P')
		default:
			return coord, 0, 0, 0, 0, "", apperr.FormatError(fmt.Sprintf("invalid mic-e destination character: %q", c))
		}
		if digits[i] == ' ' {
			return coord, 0, 0, 0, 0, "", apperr.FormatError("mic-e position ambiguity is not supported")
		}
	}

	south := base[3] == 'L' || (base[3] >= '0' && base[3] <= '9')
	lonOffset := 0
	if base[4] >= 'P' && base[4] <= 'Z' {
		lonOffset = 100
	}
	west := base[5] >= 'P' && base[5] <= 'Z'

	dd, _ := strconv.Atoi(string(digits[0:2]))
	mm, _ := strconv.Atoi(string(digits[2:4]))
	hh, _ := strconv.Atoi(string(digits[4:6]))
	lat := float64(dd) + (float64(mm)+float64(hh)/100)/60
	if south {
		lat = -lat
	}

	if len(payload) < 9 {
		return coord, 0, 0, 0, 0, "", apperr.FormatError("mic-e information field too short")
	}

	b1 := int(payload[1]) - 28
	b2 := int(payload[2]) - 28
	b3 := int(payload[3]) - 28
	b4 := int(payload[4]) - 28
	b5 := int(payload[5]) - 28
	b6 := int(payload[6]) - 28
	symCode = payload[7]
	symTable = payload[8]

	lonDeg := b1 + lonOffset
	switch {
	case lonDeg >= 180 && lonDeg <= 189:
		lonDeg -= 80
	case lonDeg >= 190 && lonDeg <= 199:
		lonDeg -= 190
	}

	lonMin := b2
	if lonMin >= 60 {
		lonMin %= 60
	}
	lonHun := b3

	lon := float64(lonDeg) + (float64(lonMin)+float64(lonHun)/100)/60
	if west {
		lon = -lon
	}

	sp := b4
	shared := b5
	speed = float64(sp*10) + float64(shared)/10

	dc := b6
	course = (shared%10)*100 + dc

	coord, err = geo.NewCoordinate(lat, lon)
	if err != nil {
		return geo.Coordinate{}, 0, 0, 0, 0, "", err
	}

	comment = ""
	if len(payload) > 9 {
		comment = payload[9:]
	}

	return coord, speed, course, symTable, symCode, comment, nil
}
