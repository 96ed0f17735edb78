package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"vonage_relay/internal/adapters/observability"
	"vonage_relay/internal/domain"
)

type WebhookService struct {
	gw    domain.VonageGateway
	repo  domain.MessageRepository
	cache domain.Cache
}

func NewWebhookService(gw domain.VonageGateway, r domain.MessageRepository, cache domain.Cache) *WebhookService {
	return &WebhookService{gw: gw, repo: r, cache: cache}
}

// Handle verifies and stores one webhook delivery. authorization is the raw
// Authorization header; a failed check is ErrInvalidSignature, never a panic.
func (s *WebhookService) Handle(ctx context.Context, kind domain.EventKind, authorization string, body []byte) (domain.MessageEvent, error) {
	if !s.gw.VerifyWebhook(authorization, body) {
		observability.ObserveWebhook(string(kind), "rejected")
		return domain.MessageEvent{}, domain.ErrInvalidSignature
	}

	ev, err := mapEvent(kind, body)
	if err != nil {
		observability.ObserveWebhook(string(kind), "invalid")
		return domain.MessageEvent{}, err
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		return domain.MessageEvent{}, fmt.Errorf("store %s event for %s: %w", kind, ev.MessageUUID, err)
	}
	if s.cache != nil {
		s.invalidateEvents(ctx, ev.MessageUUID)
	}
	observability.ObserveWebhook(string(kind), "stored")

	log.Info().
		Str("kind", string(kind)).
		Str("message_uuid", ev.MessageUUID).
		Str("status", deref(ev.Status)).
		Msg("webhook stored")
	return ev, nil
}

func (s *WebhookService) invalidateEvents(ctx context.Context, messageUUID string) {
	if err := s.cache.Del(ctx, eventsKey(messageUUID)); err != nil {
		log.Warn().Err(err).Str("message_uuid", messageUUID).Msg("events cache invalidation failed")
	}
}
