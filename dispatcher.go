package ygggo_session

import "sync"

// Dispatcher hands callbacks back to the host. Post must not block and
// must run fn exactly once, in posting order for a given session.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Post(fn func()) { f(fn) }

// TaskQueue collects callbacks until the host calls Flush on its own
// goroutine. It is the default Dispatcher of a Session.
type TaskQueue struct {
	mu    sync.Mutex
	tasks []func()
}

func NewTaskQueue() *TaskQueue { return &TaskQueue{} }

func (q *TaskQueue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

// Flush runs every queued callback and returns how many ran. Callbacks
// posted while flushing wait for the next call. If a callback panics, the
// callbacks after it go back to the front of the queue before the panic
// continues.
func (q *TaskQueue) Flush() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	ran := 0
	defer func() {
		if ran == len(tasks) {
			return
		}
		rest := tasks[ran+1:]
		q.mu.Lock()
		q.tasks = append(append(make([]func(), 0, len(rest)+len(q.tasks)), rest...), q.tasks...)
		q.mu.Unlock()
	}()
	for ran < len(tasks) {
		tasks[ran]()
		ran++
	}
	return ran
}

// Len returns the number of callbacks waiting.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
