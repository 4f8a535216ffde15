package ygggo_session

import "sync"

// mailbox is an unbounded FIFO of commands with many senders and one
// receiver. send never blocks.
type mailbox struct {
	mu     sync.Mutex
	queue  []Command
	closed bool
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

// send appends cmd. It reports false once the mailbox is closed.
func (m *mailbox) send(cmd Command) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, cmd)
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// recv blocks until a command is queued. ok is false when the mailbox is
// closed and drained.
func (m *mailbox) recv() (Command, bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			cmd := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return cmd, true
		}
		if m.closed {
			m.mu.Unlock()
			return nil, false
		}
		m.mu.Unlock()
		<-m.notify
	}
}

// close rejects further sends and returns what was still queued.
func (m *mailbox) close() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	rest := m.queue
	m.queue = nil
	select {
	case m.notify <- struct{}{}:
	default:
	}
	return rest
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
