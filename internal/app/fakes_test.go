package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"vonage_relay/internal/domain"
)

// ---- fakes ----

type fakeGateway struct {
	mu       sync.Mutex
	sent     []domain.OutboundMessage
	sendErr  func(to string) error
	inFlight int32
	maxSeen  int32
	block    chan struct{}

	validToken string
	rooms      domain.RoomsPage
	room       map[string]any
	roomErr    error
	roomCalls  int32
}

func (g *fakeGateway) SendMessage(ctx context.Context, m domain.OutboundMessage) (domain.SendResult, error) {
	n := atomic.AddInt32(&g.inFlight, 1)
	defer atomic.AddInt32(&g.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&g.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&g.maxSeen, seen, n) {
			break
		}
	}
	if g.block != nil {
		<-g.block
	}
	if g.sendErr != nil {
		if err := g.sendErr(m.To); err != nil {
			return domain.SendResult{}, err
		}
	}
	g.mu.Lock()
	g.sent = append(g.sent, m)
	g.mu.Unlock()
	return domain.SendResult{MessageUUID: "uuid-" + m.To}, nil
}

func (g *fakeGateway) VerifyWebhook(token string, body []byte) bool {
	return token != "" && token == g.validToken
}

func (g *fakeGateway) ListRooms(ctx context.Context, q domain.RoomsQuery) (domain.RoomsPage, error) {
	atomic.AddInt32(&g.roomCalls, 1)
	return g.rooms, nil
}

func (g *fakeGateway) GetRoom(ctx context.Context, id string) (map[string]any, error) {
	atomic.AddInt32(&g.roomCalls, 1)
	return g.room, g.roomErr
}

type fakeRepo struct {
	mu       sync.Mutex
	messages []domain.OutboundMessage
	events   []domain.MessageEvent
	insErr   error
}

func (f *fakeRepo) InsertMessage(ctx context.Context, m domain.OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insErr != nil {
		return f.insErr
	}
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeRepo) InsertEvent(ctx context.Context, e domain.MessageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRepo) ListEvents(ctx context.Context, messageUUID string, limit int) (domain.EventsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out domain.EventsPage
	for _, e := range f.events {
		if e.MessageUUID == messageUUID && len(out.Items) < limit {
			out.Items = append(out.Items, e)
		}
	}
	return out, nil
}

// fakeCache round-trips through JSON like the redis adapter does.
type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.deleted = append(c.deleted, key)
	return nil
}
