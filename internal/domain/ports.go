package domain

import "context"

type MessageRepository interface {
	// Write paths
	InsertMessage(ctx context.Context, m OutboundMessage) error
	InsertEvent(ctx context.Context, e MessageEvent) error

	// Read paths
	ListEvents(ctx context.Context, messageUUID string, limit int) (EventsPage, error)
}

type VonageGateway interface {
	SendMessage(ctx context.Context, m OutboundMessage) (SendResult, error)
	// VerifyWebhook checks the webhook JWT signature and, when the token
	// carries one, its payload hash against body.
	VerifyWebhook(token string, body []byte) bool
	ListRooms(ctx context.Context, q RoomsQuery) (RoomsPage, error)
	GetRoom(ctx context.Context, id string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
