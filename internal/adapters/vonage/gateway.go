package vonage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vonage_relay/internal/domain"
	"vonage_relay/internal/shared/seq"
)

// Gateway adapts the API namespaces to domain.VonageGateway.
type Gateway struct {
	Messaging *Messaging
	Rooms     *Rooms
}

// NewGateway builds both namespaces over one credential. The Meetings API
// is served from its own host.
func NewGateway(cfg Config) (*Gateway, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	meetings := cfg.MeetingsHost
	if meetings == "" {
		meetings = DefaultMeetingsHost
	}
	return &Gateway{
		Messaging: NewMessaging(c, cfg.SignatureSecret, cfg.Verifier),
		Rooms:     NewRooms(c.WithHost(meetings)),
	}, nil
}

func (g *Gateway) SendMessage(ctx context.Context, m domain.OutboundMessage) (domain.SendResult, error) {
	msg, err := NewMessage(m.Channel, m.MessageType, m.Content, m.Opts)
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	params := msg.Params(m.To, m.From)
	if m.ClientRef != "" {
		params["client_ref"] = m.ClientRef
	}
	resp, err := g.Messaging.Send(ctx, params)
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			return domain.SendResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return domain.SendResult{}, err
	}
	out := domain.SendResult{MessageUUID: resp.Entity.String("message_uuid")}
	if wf := resp.Entity.String("workflow_id"); wf != "" {
		out.WorkflowID = &wf
	}
	if out.MessageUUID == "" {
		return out, fmt.Errorf("vonage: send response has no message_uuid")
	}
	return out, nil
}

func (g *Gateway) VerifyWebhook(token string, body []byte) bool {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return g.Messaging.VerifyWebhookToken(token) && PayloadHashMatches(token, body)
}

func (g *Gateway) ListRooms(ctx context.Context, q domain.RoomsQuery) (domain.RoomsPage, error) {
	list, err := g.Rooms.List(ctx, RoomsQuery{StartID: q.StartID, EndID: q.EndID, PageSize: q.PageSize})
	if err != nil {
		return domain.RoomsPage{}, err
	}
	page := domain.RoomsPage{
		Items: seq.Collect(seq.Map(list.Iterate(), func(e Entity) map[string]any { return e })),
		Total: list.TotalItems(),
	}
	if next, ok := list.Next(); ok {
		page.Next = &next
	}
	return page, nil
}

func (g *Gateway) GetRoom(ctx context.Context, id string) (map[string]any, error) {
	resp, err := g.Rooms.Info(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: room %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return resp.Entity, nil
}
