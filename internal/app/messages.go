package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vonage_relay/internal/adapters/observability"
	"vonage_relay/internal/domain"
)

type MessageService struct {
	gw   domain.VonageGateway
	repo domain.MessageRepository
	now  func() time.Time
}

func NewMessageService(gw domain.VonageGateway, r domain.MessageRepository) *MessageService {
	return &MessageService{gw: gw, repo: r, now: time.Now}
}

// Send delivers m through Vonage and records it. A client_ref is generated
// when the caller did not set one, so status webhooks can be correlated.
func (s *MessageService) Send(ctx context.Context, m domain.OutboundMessage) (domain.SendResult, error) {
	m.To = strings.TrimSpace(m.To)
	m.From = strings.TrimSpace(m.From)
	if m.To == "" || m.From == "" {
		return domain.SendResult{}, fmt.Errorf("%w: to and from are required", domain.ErrInvalidInput)
	}
	if m.ClientRef == "" {
		m.ClientRef = uuid.NewString()
	}

	res, err := s.gw.SendMessage(ctx, m)
	observability.ObserveSend(m.Channel, err)
	if err != nil {
		return domain.SendResult{}, err
	}

	m.MessageUUID = res.MessageUUID
	m.CreatedAt = s.now().UTC()
	m.RawJSON = messageRecord(m)
	if err := s.repo.InsertMessage(ctx, m); err != nil {
		// the message is already on its way; surface the bookkeeping failure
		return res, fmt.Errorf("record message %s: %w", res.MessageUUID, err)
	}
	log.Info().
		Str("message_uuid", res.MessageUUID).
		Str("channel", m.Channel).
		Str("client_ref", m.ClientRef).
		Msg("message accepted")
	return res, nil
}
