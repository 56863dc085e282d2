package marker

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

// State is a stage of a request run. Runs only move forward.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateScaling
	StateComposing
	StateEncoding
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateScaling:
		return "scaling"
	case StateComposing:
		return "composing"
	case StateEncoding:
		return "encoding"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// run tracks one request through its states.
type run struct {
	id      string
	state   State
	started time.Time
	log     logrus.FieldLogger
	trace   []State
}

func newRun(id string, log logrus.FieldLogger) *run {
	return &run{
		id:      id,
		state:   StateIdle,
		started: time.Now(),
		log:     log.WithField("request_id", id),
		trace:   []State{StateIdle},
	}
}

// enter moves the run to next. Moving backwards or out of a terminal state
// is a programming error.
func (r *run) enter(next State) {
	if r.state.Terminal() || next <= r.state {
		panic(fmt.Sprintf("marker: invalid transition %s -> %s", r.state, next))
	}
	r.log.WithFields(logrus.Fields{"from": r.state.String(), "to": next.String()}).Debug("state transition")
	r.state = next
	r.trace = append(r.trace, next)
}

// fail ends the run with err and returns it.
func (r *run) fail(err error) error {
	r.enter(StateFailed)
	r.log.WithFields(logrus.Fields{
		"kind":     string(apperrors.KindOf(err)),
		"duration": time.Since(r.started).String(),
	}).WithError(err).Warn("marking failed")
	return err
}

// done ends the run successfully.
func (r *run) done(path string) {
	r.enter(StateDone)
	r.log.WithFields(logrus.Fields{
		"path":     path,
		"duration": time.Since(r.started).String(),
	}).Info("marking complete")
}
