package app

import (
	"context"
	"fmt"
	"time"

	"vonage_relay/internal/domain"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 200
)

// One cached timeline per message, read at maxEventsLimit and cut down per
// request, so a single delete invalidates every limit.
func eventsKey(messageUUID string) string {
	return "events:" + messageUUID
}

type QueryService struct {
	gw       domain.VonageGateway
	repo     domain.MessageRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(gw domain.VonageGateway, r domain.MessageRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{gw: gw, repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListRooms(ctx context.Context, q domain.RoomsQuery) (domain.RoomsPage, error) {
	key := fmt.Sprintf("rooms:%d:%s:%s", q.PageSize, q.StartID, q.EndID)
	var out domain.RoomsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	page, err := s.gw.ListRooms(ctx, q)
	if err != nil {
		return domain.RoomsPage{}, err
	}
	_ = s.cache.Set(ctx, key, page, int(s.cacheTTL.Seconds()))
	return page, nil
}

func (s *QueryService) GetRoom(ctx context.Context, id string) (map[string]any, error) {
	key := "room:" + id
	var out map[string]any
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	room, err := s.gw.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, room, int(s.cacheTTL.Seconds()))
	return room, nil
}

func (s *QueryService) ListEvents(ctx context.Context, messageUUID string, limit int) (domain.EventsPage, error) {
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	limit = min(limit, maxEventsLimit)

	key := eventsKey(messageUUID)
	var all domain.EventsPage
	if ok, _ := s.cache.Get(ctx, key, &all); !ok {
		ep, err := s.repo.ListEvents(ctx, messageUUID, maxEventsLimit)
		if err != nil {
			return domain.EventsPage{}, err
		}
		all = ep
		if len(all.Items) > 0 {
			_ = s.cache.Set(ctx, key, all, int(s.cacheTTL.Seconds()))
		}
	}
	if len(all.Items) == 0 {
		return domain.EventsPage{}, fmt.Errorf("%w: no events for %s", domain.ErrNotFound, messageUUID)
	}

	// copy slice to avoid aliasing the cached or repo backing array
	n := min(limit, len(all.Items))
	cp := domain.EventsPage{Items: make([]domain.MessageEvent, n)}
	copy(cp.Items, all.Items[:n])
	return cp, nil
}
