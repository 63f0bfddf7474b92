package audio

import "sync"

// commandQueue is an ordered multi-producer buffer of pending commands.
// Producers append at the tail; the dispatcher drains from the head. The lock
// is held only around slice operations, never across a backend call.
type commandQueue struct {
	mu       sync.Mutex
	commands []*AudioCommand
}

// push appends a command at the tail. Always succeeds.
func (q *commandQueue) push(cmd *AudioCommand) {
	q.mu.Lock()
	q.commands = append(q.commands, cmd)
	q.mu.Unlock()
}

// drain atomically takes ownership of all currently queued commands, oldest
// first, and leaves the queue empty. Commands pushed while the batch is being
// processed land in the fresh queue and are seen on the next drain.
func (q *commandQueue) drain() []*AudioCommand {
	q.mu.Lock()
	batch := q.commands
	q.commands = nil
	q.mu.Unlock()
	return batch
}

// requeue prepends commands at the head, preserving their relative order, so
// a retried command is attempted before anything enqueued after it.
func (q *commandQueue) requeue(cmds []*AudioCommand) {
	if len(cmds) == 0 {
		return
	}
	q.mu.Lock()
	q.commands = append(append(make([]*AudioCommand, 0, len(cmds)+len(q.commands)), cmds...), q.commands...)
	q.mu.Unlock()
}

func (q *commandQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// containsPlay reports whether a play command for the instance is pending.
func (q *commandQueue) containsPlay(h InstanceHandle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, cmd := range q.commands {
		if cmd.kind == commandPlay && cmd.play != nil && cmd.play.Instance == h {
			return true
		}
	}
	return false
}
