package ygggo_session

import "time"

// Command is a message accepted by a session's actor. The concrete types
// are ConnectCommand, DisconnectCommand, PingCommand and *QueryRequest.
type Command interface {
	command()
}

// ConnectCommand opens a fresh connection, replacing any existing one.
type ConnectCommand struct {
	Callback func(err error)
}

// DisconnectCommand closes the live connection. The session stays usable
// and may be connected again.
type DisconnectCommand struct {
	Callback func(err error)
}

// PingCommand checks the live connection and reports its round trip.
type PingCommand struct {
	Callback func(latency time.Duration, err error)
}

// closeCommand stops the actor. Session.Close sends it after a disconnect.
type closeCommand struct{}

// reconnectCommand is one automatic recovery round. The actor answers on
// reply with whether the round ended the recovery.
type reconnectCommand struct {
	round int
	gen   uint64
	reply chan bool
}

func (ConnectCommand) command()    {}
func (DisconnectCommand) command() {}
func (PingCommand) command()       {}
func (closeCommand) command()      {}
func (reconnectCommand) command()  {}
