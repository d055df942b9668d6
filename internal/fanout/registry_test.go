package fanout

import (
	"sync"
	"testing"

	"github.com/chrissnell/aprsingest/internal/callsign"
	"github.com/chrissnell/aprsingest/internal/geo"
	"github.com/chrissnell/aprsingest/internal/packet"
	"go.uber.org/zap"
)

type fakeSubscriber struct {
	id string

	mu       sync.Mutex
	received []packet.DTO
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Send(dto packet.DTO) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, dto)
	return nil
}

func (f *fakeSubscriber) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(zap.NewNop().Sugar())
}

func testPacketFrom(t *testing.T, raw string, coord *geo.Coordinate) packet.Packet {
	t.Helper()
	sender, err := callsign.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return packet.Packet{Sender: sender, Type: packet.TypePositionWithoutTimestamp, Position: coord, RawContent: "raw"}
}

func TestRegistryAllSubscriberReceivesEveryPacket(t *testing.T) {
	r := testRegistry(t)
	sub := &fakeSubscriber{id: "sub1"}
	r.Connect(sub)
	r.SubscribeAll(sub.ID())

	r.Broadcast(testPacketFrom(t, "N0CALL", nil))
	r.Broadcast(testPacketFrom(t, "W1AW", nil))

	if got := sub.count(); got != 2 {
		t.Errorf("all-subscriber received %d packets, want 2", got)
	}
}

func TestRegistryCallsignSubscriberReceivesOnlyMatching(t *testing.T) {
	r := testRegistry(t)
	sub := &fakeSubscriber{id: "sub1"}
	r.Connect(sub)
	if err := r.SubscribeCallsign(sub.ID(), "N0CALL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Broadcast(testPacketFrom(t, "N0CALL", nil))
	r.Broadcast(testPacketFrom(t, "W1AW", nil))

	if got := sub.count(); got != 1 {
		t.Errorf("callsign-subscriber received %d packets, want 1", got)
	}
}

func TestRegistryCallsignSubscriberMatchesBaseAcrossSSIDs(t *testing.T) {
	r := testRegistry(t)
	sub := &fakeSubscriber{id: "sub1"}
	r.Connect(sub)
	if err := r.SubscribeCallsign(sub.ID(), "N0CALL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Broadcast(testPacketFrom(t, "N0CALL-9", nil))

	if got := sub.count(); got != 1 {
		t.Errorf("base-callsign subscriber received %d packets for an SSID'd sender, want 1", got)
	}
}

func TestRegistryAreaSubscriberReceivesOnlyMatchingCell(t *testing.T) {
	r := testRegistry(t)
	sub := &fakeSubscriber{id: "sub1"}
	r.Connect(sub)
	if err := r.SubscribeArea(sub.ID(), 37.5, -122.0, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inCell, _ := geo.NewCoordinate(37.7, -121.6)
	outOfCell, _ := geo.NewCoordinate(10.0, 10.0)

	r.Broadcast(testPacketFrom(t, "N0CALL", &inCell))
	r.Broadcast(testPacketFrom(t, "W1AW", &outOfCell))

	if got := sub.count(); got != 1 {
		t.Errorf("area-subscriber received %d packets, want 1", got)
	}
}

func TestRegistryAreaScenarioFromSpec(t *testing.T) {
	r := testRegistry(t)
	sub := &fakeSubscriber{id: "sub1"}
	r.Connect(sub)
	if err := r.SubscribeArea(sub.ID(), 52.5, 21.5, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inCell, _ := geo.NewCoordinate(52.9, 21.9)
	r.Broadcast(testPacketFrom(t, "N0CALL", &inCell))

	if got := sub.count(); got != 1 {
		t.Errorf("subscriber of area:52_21 received %d packets for a (52.9,21.9) packet, want 1", got)
	}
}

func TestRegistryUnsubscribeStopsDelivery(t *testing.T) {
	r := testRegistry(t)
	sub := &fakeSubscriber{id: "sub1"}
	r.Connect(sub)
	r.SubscribeAll(sub.ID())
	r.UnsubscribeAll(sub.ID())

	r.Broadcast(testPacketFrom(t, "N0CALL", nil))

	if got := sub.count(); got != 0 {
		t.Errorf("unsubscribed subscriber received %d packets, want 0", got)
	}
}

func TestRegistryDisconnectRemovesAllMemberships(t *testing.T) {
	r := testRegistry(t)
	sub := &fakeSubscriber{id: "sub1"}
	r.Connect(sub)
	r.SubscribeAll(sub.ID())
	if err := r.SubscribeCallsign(sub.ID(), "N0CALL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Disconnect(sub.ID())
	r.Broadcast(testPacketFrom(t, "N0CALL", nil))

	if got := sub.count(); got != 0 {
		t.Errorf("disconnected subscriber received %d packets, want 0", got)
	}
}

func TestRegistrySubscribeAreaValidatesBounds(t *testing.T) {
	r := testRegistry(t)
	if err := r.SubscribeArea("sub1", 100, 0, 50); err == nil {
		t.Error("SubscribeArea() with out-of-range latitude = nil error, want error")
	}
	if err := r.SubscribeArea("sub1", 0, 0, 0); err == nil {
		t.Error("SubscribeArea() with out-of-range radius = nil error, want error")
	}
}
