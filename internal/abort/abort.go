// Package abort provides first-wins fan-in over independent cancellation
// sources. A Signal moves from "not triggered" to "triggered" exactly once;
// Combine merges several sources into one signal that triggers as soon as
// any of them does.
package abort

import "sync"

// Signal is a one-shot cancellation signal.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// New returns an untriggered Signal.
func New() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Trigger fires the signal. Subsequent calls are no-ops.
func (s *Signal) Trigger() {
	s.once.Do(func() { close(s.done) })
}

// Done returns a channel closed when the signal triggers.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Triggered reports whether the signal has fired.
func (s *Signal) Triggered() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Combine returns a signal that triggers as soon as any source channel is
// closed. Nil sources are skipped; with no live sources Combine returns nil.
// A source already closed at call time yields an already-triggered signal.
//
// Each live source is watched by a goroutine that exits when either its
// source or the combined signal fires, so callers must Trigger the combined
// signal once the guarded operation finishes to release the watchers.
func Combine(sources ...<-chan struct{}) *Signal {
	var live []<-chan struct{}
	for _, src := range sources {
		if src != nil {
			live = append(live, src)
		}
	}
	if len(live) == 0 {
		return nil
	}

	s := New()
	for _, src := range live {
		select {
		case <-src:
			s.Trigger()
			return s
		default:
		}
	}
	for _, src := range live {
		go func(src <-chan struct{}) {
			select {
			case <-src:
				s.Trigger()
			case <-s.done:
			}
		}(src)
	}
	return s
}
