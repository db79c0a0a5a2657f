// Package namespace defines the scopes that partition state values held for a
// single key: global, per-window and per-window-per-trigger.
//
// Namespaces are immutable comparable values and may be used directly as map
// keys. Window keys are opaque encoded windows; IntervalWindow provides one
// such encoding.
//
// Textual form:
//
//	/                         global
//	/<window>/                window
//	/<window>/<trigger36>/    window and trigger index (base 36)
//
// where <window> is the unpadded URL-safe base64 of the window key.
package namespace

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const triggerRadix = 36

var ErrMalformed = errors.New("namespace: malformed")

type Kind uint8

const (
	KindGlobal Kind = iota
	KindWindow
	KindWindowAndTrigger
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindWindow:
		return "window"
	case KindWindowAndTrigger:
		return "window_and_trigger"
	default:
		return "unknown"
	}
}

// Namespace identifies a state scope. The zero value is Global.
type Namespace struct {
	kind    Kind
	window  string // window key bytes; strings keep the struct comparable
	trigger int
}

func Global() Namespace { return Namespace{} }

// Window returns the namespace of a single window. key is copied.
func Window(key []byte) Namespace {
	return Namespace{kind: KindWindow, window: string(key)}
}

// WindowAndTrigger returns the namespace of one trigger of a window.
// triggerIndex must be non-negative.
func WindowAndTrigger(key []byte, triggerIndex int) Namespace {
	if triggerIndex < 0 {
		panic("namespace: negative trigger index")
	}
	return Namespace{kind: KindWindowAndTrigger, window: string(key), trigger: triggerIndex}
}

func (n Namespace) Kind() Kind { return n.kind }

// WindowKey returns a copy of the window key, or nil for Global.
func (n Namespace) WindowKey() []byte {
	if n.kind == KindGlobal {
		return nil
	}
	return []byte(n.window)
}

// TriggerIndex returns the trigger index, or -1 when n has none.
func (n Namespace) TriggerIndex() int {
	if n.kind != KindWindowAndTrigger {
		return -1
	}
	return n.trigger
}

// Group returns the window-level namespace n belongs to: trigger namespaces
// fold into their window, Global and Window namespaces are their own group.
func (n Namespace) Group() Namespace {
	if n.kind == KindWindowAndTrigger {
		return Namespace{kind: KindWindow, window: n.window}
	}
	return n
}

func (n Namespace) String() string {
	switch n.kind {
	case KindWindow:
		return "/" + base64.RawURLEncoding.EncodeToString([]byte(n.window)) + "/"
	case KindWindowAndTrigger:
		return "/" + base64.RawURLEncoding.EncodeToString([]byte(n.window)) + "/" +
			strconv.FormatInt(int64(n.trigger), triggerRadix) + "/"
	default:
		return "/"
	}
}

// Parse is the inverse of Namespace.String.
func Parse(s string) (Namespace, error) {
	if s == "/" {
		return Global(), nil
	}
	if len(s) < 2 || s[0] != '/' || s[len(s)-1] != '/' {
		return Namespace{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	parts := strings.Split(s[1:len(s)-1], "/")
	if len(parts) > 2 {
		return Namespace{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	key, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return Namespace{}, fmt.Errorf("%w: window %q: %v", ErrMalformed, parts[0], err)
	}
	if len(parts) == 1 {
		return Window(key), nil
	}
	idx, err := strconv.ParseInt(parts[1], triggerRadix, 32)
	if err != nil || idx < 0 {
		return Namespace{}, fmt.Errorf("%w: trigger %q", ErrMalformed, parts[1])
	}
	return WindowAndTrigger(key, int(idx)), nil
}
