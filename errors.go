package statecache

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/statecache/namespace"
)

var (
	ErrNegativeWeight = errors.New("statecache: negative weight")
	ErrInvalidOptions = errors.New("statecache: invalid options")
	// ErrStaleHandle is returned by Put through a handle whose key has since
	// been claimed by another fencing token. Nothing was stored.
	ErrStaleHandle = errors.New("statecache: stale handle")
)

// WeightError reports a Put rejected for its declared weight.
type WeightError struct {
	Computation string
	Namespace   namespace.Namespace
	Tag         Tag
	Weight      int64
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("statecache: put %s%s in %q: weight %d: %v",
		e.Namespace, e.Tag, e.Computation, e.Weight, ErrNegativeWeight)
}

func (e *WeightError) Unwrap() error { return ErrNegativeWeight }
