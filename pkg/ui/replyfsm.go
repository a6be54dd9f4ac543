package ui

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Reply editor action states
const (
	replyIdle       = "idle"
	replyGenerating = "generating"
	replySaving     = "saving"
)

// Reply editor events
const (
	evGenerate = "generate"
	evSave     = "save"
	evDone     = "done"
)

type replyContext struct {
	ReviewID int
}

// replyMachine serializes the Generate and Save actions of one editor. Only
// one request is in flight at a time; events that do not apply in the
// current state are rejected.
type replyMachine struct {
	interpreter *statekit.Interpreter[replyContext]
}

func newReplyMachine(reviewID int) (*replyMachine, error) {
	builder := statekit.NewMachine[replyContext]("reply-editor").
		WithInitial(statekit.StateID(replyIdle)).
		WithContext(replyContext{ReviewID: reviewID})

	builder.State(replyIdle).
		On(evGenerate).Target(replyGenerating).
		On(evSave).Target(replySaving).
		Done()

	builder.State(replyGenerating).
		On(evDone).Target(replyIdle).
		Done()

	builder.State(replySaving).
		On(evDone).Target(replyIdle).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build reply machine: %w", err)
	}
	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &replyMachine{interpreter: interp}, nil
}

// Send fires event and reports whether the state changed
func (m *replyMachine) Send(event string) bool {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	return m.Current() != before
}

func (m *replyMachine) Current() string {
	return string(m.interpreter.State().Value)
}

func (m *replyMachine) Busy() bool {
	return m.Current() != replyIdle
}
