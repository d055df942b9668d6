package aprs

import (
	"strconv"
	"time"
)

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// decodeTimestamp consumes a leading APRS timestamp from s, resolving
// the omitted date components against hint. It returns the decoded UTC
// time, the unconsumed remainder of s, and whether a timestamp was
// recognised at all.
func decodeTimestamp(s string, hint time.Time) (*time.Time, string, bool) {
	if len(s) >= 7 {
		head := s[:6]
		indicator := s[6]
		if allDigits(head) && (indicator == 'z' || indicator == '/' || indicator == 'h') {
			a, _ := strconv.Atoi(head[0:2])
			b, _ := strconv.Atoi(head[2:4])
			c, _ := strconv.Atoi(head[4:6])

			switch indicator {
			case 'z', '/':
				day, hour, minute := a, b, c
				year, month, hintDay := hint.Date()
				if day > hintDay+1 {
					month--
					if month < time.January {
						month = time.December
						year--
					}
				}
				t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
				return &t, s[7:], true
			case 'h':
				hour, minute, second := a, b, c
				year, month, day := hint.Date()
				t := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
				return &t, s[7:], true
			}
		}
	}

	if len(s) >= 8 && allDigits(s[:8]) {
		month, _ := strconv.Atoi(s[0:2])
		day, _ := strconv.Atoi(s[2:4])
		hour, _ := strconv.Atoi(s[4:6])
		minute, _ := strconv.Atoi(s[6:8])

		year := hint.Year()
		if month > int(hint.Month())+1 {
			year--
		}
		t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
		return &t, s[8:], true
	}

	return nil, s, false
}
