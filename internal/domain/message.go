package domain

import "time"

// OutboundMessage is a message this service sent through Vonage.
type OutboundMessage struct {
	MessageUUID string
	To          string
	From        string
	Channel     string
	MessageType string
	Content     any            // string for text, object for media/templates
	Opts        map[string]any // extra send fields (webhook_url, ttl, ...)
	ClientRef   string
	CreatedAt   time.Time
	RawJSON     []byte // request payload as sent
}

// EventKind tells inbound messages from delivery status updates.
type EventKind string

const (
	EventInbound EventKind = "inbound"
	EventStatus  EventKind = "status"
)

// MessageEvent is one webhook delivery.
type MessageEvent struct {
	ID          int64
	MessageUUID string
	Kind        EventKind
	Status      *string // status webhooks only
	From        *string
	To          *string
	Channel     *string
	ClientRef   *string
	Timestamp   *time.Time
	RawJSON     []byte
}

type EventsPage struct {
	Items []MessageEvent
}

// SendResult is what Vonage returns for an accepted message.
type SendResult struct {
	MessageUUID string
	WorkflowID  *string
}

// BroadcastOutcome is the per-recipient result of a bulk send. A non-empty
// MessageUUID means Vonage accepted the message; Err may still be set when
// storing the record failed afterwards.
type BroadcastOutcome struct {
	To          string
	MessageUUID string
	Err         error
}

// Sent reports whether Vonage accepted the message. Resending a sent
// outcome delivers a duplicate.
func (o BroadcastOutcome) Sent() bool { return o.MessageUUID != "" }
