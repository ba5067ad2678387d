package game

import (
	"strconv"
	"sync"
	"time"
)

// Lifecycle event names, shared by the events endpoint and the result
// push subsystem.
const (
	EventRoundStarted    = "round_started"
	EventRoundEndedEmpty = "round_ended_empty"
	EventSpinCommitted   = "spin_committed"
	EventSpinEnded       = "spin_ended"
	EventGamePaused      = "game_paused"
	EventGameResumed     = "game_resumed"
	EventGameStopped     = "game_stopped"
	EventGameReset       = "game_reset"
	EventForcedIdle      = "forced_idle"
)

type GameEvent struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`
}

// EventBuffer keeps a bounded ring of recent lifecycle events for
// poll-based catch-up, and fans live events out to subscribers.
type EventBuffer struct {
	mu       sync.Mutex
	nextID   int64
	max      int
	events   []GameEvent
	watchers map[chan GameEvent]struct{}
	closed   bool
}

func NewEventBuffer(max int) *EventBuffer {
	if max <= 0 {
		max = 500
	}
	return &EventBuffer{
		max:      max,
		watchers: map[chan GameEvent]struct{}{},
	}
}

func (b *EventBuffer) Append(event string, data any) GameEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return GameEvent{}
	}
	b.nextID++
	ev := GameEvent{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		ServerTS: time.Now().UnixMilli(),
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID, or the
// whole buffer when the id is empty or unparseable.
func (b *EventBuffer) ReplayAfter(lastEventID string) []GameEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	if lastEventID == "" {
		out := make([]GameEvent, len(b.events))
		copy(out, b.events)
		return out
	}
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if err != nil {
		out := make([]GameEvent, len(b.events))
		copy(out, b.events)
		return out
	}
	out := make([]GameEvent, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *EventBuffer) Subscribe() chan GameEvent {
	ch := make(chan GameEvent, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *EventBuffer) Unsubscribe(ch chan GameEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *EventBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
