package namespace

import (
	"fmt"
	"time"

	"github.com/unkn0wn-root/statecache/internal/wire"
)

// IntervalWindow is a half-open [Start, End) event-time window.
// Keys are encoded with microsecond precision.
type IntervalWindow struct {
	Start time.Time
	End   time.Time
}

func (w IntervalWindow) Key() []byte {
	return wire.EncodeWindow(w.Start.UnixMicro(), w.End.UnixMicro())
}

// Namespace returns the window namespace of w.
func (w IntervalWindow) Namespace() Namespace { return Window(w.Key()) }

// TriggerNamespace returns the namespace of trigger i within w.
func (w IntervalWindow) TriggerNamespace(i int) Namespace { return WindowAndTrigger(w.Key(), i) }

func DecodeIntervalWindow(key []byte) (IntervalWindow, error) {
	start, end, err := wire.DecodeWindow(key)
	if err != nil {
		return IntervalWindow{}, fmt.Errorf("interval window: %w", err)
	}
	return IntervalWindow{Start: time.UnixMicro(start).UTC(), End: time.UnixMicro(end).UTC()}, nil
}
