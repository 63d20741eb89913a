package ambient

import "github.com/cbegin/ambient-go/internal/layers"

type EventKind int

const (
	EventChordChanged EventKind = iota
	EventArpeggioStarted
	EventArpeggioStopped
	EventHeartbeatBeat
	EventPlaybackStarted
	EventPlaybackStopped
	EventDeviceStatus
)

func (k EventKind) String() string {
	switch k {
	case EventChordChanged:
		return "chord-changed"
	case EventArpeggioStarted:
		return "arpeggio-started"
	case EventArpeggioStopped:
		return "arpeggio-stopped"
	case EventHeartbeatBeat:
		return "heartbeat"
	case EventPlaybackStarted:
		return "playback-started"
	case EventPlaybackStopped:
		return "playback-stopped"
	case EventDeviceStatus:
		return "device-status"
	default:
		return "unknown"
	}
}

// Event is delivered on the Watch channel.
type Event struct {
	Kind EventKind
	// Time is the engine clock in seconds.
	Time float64
	// Chord is set for chord and arpeggio events.
	Chord []float64
	// Err is set for device status events.
	Err error
}

func fromLayerEvent(ev layers.Event) Event {
	out := Event{Time: ev.Time, Chord: ev.Chord}
	switch ev.Kind {
	case layers.EventChordChanged:
		out.Kind = EventChordChanged
	case layers.EventArpeggioStarted:
		out.Kind = EventArpeggioStarted
	case layers.EventArpeggioStopped:
		out.Kind = EventArpeggioStopped
	case layers.EventHeartbeatBeat:
		out.Kind = EventHeartbeatBeat
	}
	return out
}

func (e *Engine) sendEvent(ev Event) {
	e.eventChMu.Lock()
	defer e.eventChMu.Unlock()
	if e.eventCh != nil {
		select {
		case e.eventCh <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// Watch returns a channel that receives engine events. The channel is
// buffered (cap 32); events are dropped rather than blocking the audio
// thread. Only the most recent Watch channel receives events.
func (e *Engine) Watch() <-chan Event {
	ch := make(chan Event, 32)
	e.eventChMu.Lock()
	e.eventCh = ch
	e.eventChMu.Unlock()
	return ch
}
