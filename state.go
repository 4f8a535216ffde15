package ygggo_session

import (
	"fmt"

	"go.uber.org/atomic"
)

// State is the lifecycle state of a session's connection.
type State uint32

const (
	StateConnected State = iota
	StateConnecting
	StateNotConnected
	StateDisconnected
)

var stateNames = [...]string{
	StateConnected:    "Connected",
	StateConnecting:   "Connecting",
	StateNotConnected: "Not Connected",
	StateDisconnected: "Disconnected",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

// atomicState stores a State without locks. Only the actor writes it.
type atomicState struct {
	v atomic.Uint32
}

func newAtomicState(s State) *atomicState {
	as := &atomicState{}
	as.v.Store(uint32(s))
	return as
}

func (as *atomicState) Load() State { return State(as.v.Load()) }

func (as *atomicState) Store(s State) { as.v.Store(uint32(s)) }

// connMeta is shared between the actor, the heartbeat and external readers.
// Everything but state and epoch is immutable after Open.
type connMeta struct {
	id    string
	epoch atomic.Uint64
	state *atomicState
	opts  *ConnectionOptions
}

func newConnMeta(id string, opts *ConnectionOptions) *connMeta {
	return &connMeta{
		id:    id,
		state: newAtomicState(StateNotConnected),
		opts:  opts,
	}
}
