// Package notice holds transient user-facing notifications.
package notice

import "sync"

// Notice is a toast-style message. Destructive marks failures.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Destructive bool   `json:"destructive,omitempty"`
}

// Success builds a plain notice.
func Success(title string) Notice {
	return Notice{Title: title}
}

// Failure builds a destructive notice carrying a message.
func Failure(title, description string) Notice {
	return Notice{Title: title, Description: description, Destructive: true}
}

// Queue collects notices until they are drained.
type Queue struct {
	mu    sync.Mutex
	items []Notice
}

func (q *Queue) Push(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Drain returns the pending notices and empties the queue.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		return []Notice{}
	}
	return out
}
