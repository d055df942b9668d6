package packet

import (
	"testing"

	"github.com/chrissnell/aprsingest/internal/callsign"
)

func mustCallsign(t *testing.T, raw string) callsign.Callsign {
	t.Helper()
	c, err := callsign.Parse(raw)
	if err != nil {
		t.Fatalf("callsign.Parse(%q) unexpected error: %v", raw, err)
	}
	return c
}

func TestFingerprintStableForIdenticalInput(t *testing.T) {
	a := Fingerprint("N0CALL", "raw content")
	b := Fingerprint("N0CALL", "raw content")
	if a != b {
		t.Errorf("Fingerprint() not stable: %q != %q", a, b)
	}
}

func TestFingerprintDiffersByContent(t *testing.T) {
	a := Fingerprint("N0CALL", "first")
	b := Fingerprint("N0CALL", "second")
	if a == b {
		t.Errorf("Fingerprint() for different raw content collided: %q", a)
	}
}

func TestFingerprintDiffersBySender(t *testing.T) {
	a := Fingerprint("N0CALL", "same")
	b := Fingerprint("W1AW", "same")
	if a == b {
		t.Errorf("Fingerprint() for different senders collided: %q", a)
	}
}

func TestWithSpeedCourseAcceptsInRange(t *testing.T) {
	p := New(mustCallsign(t, "N0CALL"), callsign.Callsign{}, "APRS", TypePositionWithoutTimestamp, "raw")
	speed := 42.0
	course := 180
	p.WithSpeedCourse(&speed, &course)
	if p.Speed == nil || *p.Speed != 42.0 {
		t.Errorf("Speed = %v, want 42.0", p.Speed)
	}
	if p.Course == nil || *p.Course != 180 {
		t.Errorf("Course = %v, want 180", p.Course)
	}
}

func TestWithSpeedCourseDropsOutOfRangeSpeed(t *testing.T) {
	p := New(mustCallsign(t, "N0CALL"), callsign.Callsign{}, "APRS", TypePositionWithoutTimestamp, "raw")
	speed := 9999.0
	course := 100
	p.WithSpeedCourse(&speed, &course)
	if p.Speed != nil {
		t.Errorf("Speed = %v, want nil (out-of-range glitch filter)", *p.Speed)
	}
	if p.Course == nil || *p.Course != 100 {
		t.Errorf("Course = %v, want 100 (unaffected by the speed glitch)", p.Course)
	}
}

func TestWithSpeedCourseDropsOutOfRangeCourse(t *testing.T) {
	p := New(mustCallsign(t, "N0CALL"), callsign.Callsign{}, "APRS", TypePositionWithoutTimestamp, "raw")
	speed := 10.0
	course := 361
	p.WithSpeedCourse(&speed, &course)
	if p.Course != nil {
		t.Errorf("Course = %v, want nil (out-of-range glitch filter)", *p.Course)
	}
	if p.Speed == nil || *p.Speed != 10.0 {
		t.Errorf("Speed = %v, want 10.0 (unaffected by the course glitch)", p.Speed)
	}
}

func TestWithSpeedCourseNilInputsStayNil(t *testing.T) {
	p := New(mustCallsign(t, "N0CALL"), callsign.Callsign{}, "APRS", TypePositionWithoutTimestamp, "raw")
	p.WithSpeedCourse(nil, nil)
	if p.Speed != nil || p.Course != nil {
		t.Errorf("Speed/Course = %v/%v, want nil/nil", p.Speed, p.Course)
	}
}

func TestWeatherDataIsEmpty(t *testing.T) {
	var wx WeatherData
	if !wx.IsEmpty() {
		t.Error("zero-value WeatherData.IsEmpty() = false, want true")
	}
	temp := 72
	wx.Temperature = &temp
	if wx.IsEmpty() {
		t.Error("WeatherData with Temperature set IsEmpty() = true, want false")
	}
}
