// Package callsign implements the amateur-radio station identifier value
// object shared by every layer of the ingestion pipeline.
package callsign

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chrissnell/aprsingest/internal/apperr"
)

var pattern = regexp.MustCompile(`^([A-Z0-9]{2,6})(?:-([0-9]{1,2}))?$`)

// Callsign is an immutable amateur-radio station identifier, optionally
// carrying a Secondary Station Identifier (SSID).
type Callsign struct {
	value string
	base  string
	ssid  int
}

// Parse validates and constructs a Callsign from raw text such as
// "N0CALL" or "N0CALL-9". Input is uppercased before validation.
func Parse(raw string) (Callsign, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))

	if len(value) < 3 || len(value) > 15 {
		return Callsign{}, apperr.Validation("callsign", fmt.Sprintf("length must be 3-15 characters: %q", raw))
	}

	m := pattern.FindStringSubmatch(value)
	if m == nil {
		return Callsign{}, apperr.Validation("callsign", fmt.Sprintf("malformed callsign: %q", raw))
	}

	base := m[1]
	ssid := 0
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil || n < 0 || n > 15 {
			return Callsign{}, apperr.Validation("callsign", fmt.Sprintf("SSID out of range 0-15: %q", raw))
		}
		ssid = n
	}

	return Callsign{value: value, base: base, ssid: ssid}, nil
}

// Value returns the full callsign text, e.g. "N0CALL-9". Uppercasing is a
// fixed point: Parse(c.Value()) always reproduces c.
func (c Callsign) Value() string { return c.value }

// Base returns the callsign without its SSID, e.g. "N0CALL".
func (c Callsign) Base() string { return c.base }

// SSID returns the Secondary Station Identifier (0 when absent).
func (c Callsign) SSID() int { return c.ssid }

// IsZero reports whether c is the zero value (no callsign set).
func (c Callsign) IsZero() bool { return c.value == "" }

// Equal reports whether two callsigns have the same full value.
func (c Callsign) Equal(o Callsign) bool { return c.value == o.value }

func (c Callsign) String() string { return c.value }
