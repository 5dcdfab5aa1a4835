package models

// Event is one outbox record waiting to be relayed to the notifier topic.
type Event struct {
	Id      string
	Payload string
}
