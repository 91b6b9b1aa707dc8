package client

import "sync"

// Notifier shows transient success and error messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

type Notification struct {
	Error   bool
	Message string
}

// RecordingNotifier keeps every message it is given, in order.
type RecordingNotifier struct {
	mu  sync.Mutex
	all []Notification
}

func (r *RecordingNotifier) Success(msg string) { r.add(Notification{Message: msg}) }
func (r *RecordingNotifier) Error(msg string)   { r.add(Notification{Error: true, Message: msg}) }

func (r *RecordingNotifier) add(n Notification) {
	r.mu.Lock()
	r.all = append(r.all, n)
	r.mu.Unlock()
}

func (r *RecordingNotifier) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}
