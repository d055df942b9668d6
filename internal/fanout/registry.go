// Package fanout maintains the real-time subscription registry and
// routes each persisted packet to the websocket subscribers whose groups
// it matches, per §4.5. Group membership follows the subscriber; a
// packet is routed to every matching group in parallel, and a failed
// send to one subscriber never blocks delivery to another.
package fanout

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chrissnell/aprsingest/internal/apperr"
	"github.com/chrissnell/aprsingest/internal/geo"
	"github.com/chrissnell/aprsingest/internal/packet"
	"go.uber.org/zap"
)

const groupAll = "all_packets"

// Subscriber is anything the registry can hand a packet DTO to. The
// websocket transport in conn.go is the only production implementation;
// tests may supply a fake.
type Subscriber interface {
	ID() string
	Send(dto packet.DTO) error
}

// Registry is the shared subscription table: subscriber id -> Subscriber,
// and group name -> set of subscriber ids. Safe for concurrent use by broadcasters and by the
// subscribe/unsubscribe handlers.
type Registry struct {
	logger *zap.SugaredLogger

	mu          sync.RWMutex
	subscribers map[string]Subscriber
	groups      map[string]map[string]bool // group -> set of subscriber ids
}

// NewRegistry constructs an empty Registry.
func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return &Registry{
		logger:      logger,
		subscribers: make(map[string]Subscriber),
		groups:      make(map[string]map[string]bool),
	}
}

// Connect registers a new subscriber with no group memberships.
func (r *Registry) Connect(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[sub.ID()] = sub
}

// Disconnect removes a subscriber and every group membership it held.
func (r *Registry) Disconnect(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, id)
	for _, members := range r.groups {
		delete(members, id)
	}
}

func (r *Registry) join(id, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.groups[group]
	if !ok {
		members = make(map[string]bool)
		r.groups[group] = members
	}
	members[id] = true
}

func (r *Registry) leave(id, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if members, ok := r.groups[group]; ok {
		delete(members, id)
	}
}

// SubscribeAll joins id to the all_packets group.
func (r *Registry) SubscribeAll(id string) { r.join(id, groupAll) }

// UnsubscribeAll removes id from the all_packets group.
func (r *Registry) UnsubscribeAll(id string) { r.leave(id, groupAll) }

// SubscribeCallsign joins id to the callsign:<UPPER> group. Rejects
// empty input.
func (r *Registry) SubscribeCallsign(id, cs string) error {
	cs = strings.ToUpper(strings.TrimSpace(cs))
	if cs == "" {
		return apperr.Validation("callsign", "must not be empty")
	}
	r.join(id, callsignGroup(cs))
	return nil
}

// UnsubscribeCallsign mirrors SubscribeCallsign.
func (r *Registry) UnsubscribeCallsign(id, cs string) error {
	cs = strings.ToUpper(strings.TrimSpace(cs))
	if cs == "" {
		return apperr.Validation("callsign", "must not be empty")
	}
	r.leave(id, callsignGroup(cs))
	return nil
}

// SubscribeArea joins id to the area cell containing (lat, lon).
// radiusKm is advisory only; routing always covers exactly the single
// 1°x1° cell containing the point.
func (r *Registry) SubscribeArea(id string, lat, lon, radiusKm float64) error {
	if lat < -90 || lat > 90 {
		return apperr.Validation("latitude", "out of range [-90,90]")
	}
	if lon < -180 || lon > 180 {
		return apperr.Validation("longitude", "out of range [-180,180]")
	}
	if radiusKm < 1 || radiusKm > 1000 {
		return apperr.Validation("radiusKm", "out of range [1,1000]")
	}
	coord, err := geo.NewCoordinate(lat, lon)
	if err != nil {
		return err
	}
	r.join(id, coord.AreaCell())
	return nil
}

// UnsubscribeArea mirrors SubscribeArea (radius is not needed to leave
// a cell, so it is not a parameter).
func (r *Registry) UnsubscribeArea(id string, lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return apperr.Validation("latitude", "out of range [-90,90]")
	}
	if lon < -180 || lon > 180 {
		return apperr.Validation("longitude", "out of range [-180,180]")
	}
	coord, err := geo.NewCoordinate(lat, lon)
	if err != nil {
		return err
	}
	r.leave(id, coord.AreaCell())
	return nil
}

func callsignGroup(cs string) string { return fmt.Sprintf("callsign:%s", cs) }

// Broadcast delivers p to every subscriber of every group it matches:
// all_packets, callsign:<sender>, callsign:<base> (when SSID != 0), and
// the area cell of its position, if any. Sends run in parallel; one
// subscriber's send failure never blocks or aborts another's.
func (r *Registry) Broadcast(p packet.Packet) {
	groups := r.matchingGroups(p)
	if len(groups) == 0 {
		return
	}

	dto := p.ToDTO()

	r.mu.RLock()
	targets := make(map[string]Subscriber)
	for _, group := range groups {
		for id := range r.groups[group] {
			if sub, ok := r.subscribers[id]; ok {
				targets[id] = sub
			}
		}
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range targets {
		wg.Add(1)
		go func(s Subscriber) {
			defer wg.Done()
			if err := s.Send(dto); err != nil {
				r.logger.Debugf("broadcast send to subscriber %s failed: %v", s.ID(), err)
			}
		}(sub)
	}
	wg.Wait()
}

func (r *Registry) matchingGroups(p packet.Packet) []string {
	groups := []string{groupAll}

	if !p.Sender.IsZero() {
		groups = append(groups, callsignGroup(p.Sender.Value()))
		if p.Sender.SSID() != 0 {
			groups = append(groups, callsignGroup(p.Sender.Base()))
		}
	}

	if p.Position != nil {
		groups = append(groups, p.Position.AreaCell())
	}

	return groups
}
