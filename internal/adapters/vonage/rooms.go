package vonage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Rooms is the Meetings API rooms namespace.
type Rooms struct{ c *Client }

func NewRooms(c *Client) *Rooms { return &Rooms{c: c} }

type RoomsQuery struct {
	StartID  string
	EndID    string
	PageSize int
}

func (q RoomsQuery) params() map[string]any {
	p := map[string]any{}
	if q.StartID != "" {
		p["start_id"] = q.StartID
	}
	if q.EndID != "" {
		p["end_id"] = q.EndID
	}
	if q.PageSize > 0 {
		p["page_size"] = q.PageSize
	}
	return p
}

// List fetches one page of rooms.
func (r *Rooms) List(ctx context.Context, q RoomsQuery) (*ListResponse, error) {
	resp, err := r.c.Request(ctx, "/v1/meetings/rooms", q.params(), http.MethodGet)
	if err != nil {
		return nil, err
	}
	return NewListResponse(resp, "rooms")
}

func (r *Rooms) Info(ctx context.Context, roomID string) (*Response, error) {
	if roomID == "" {
		return nil, fmt.Errorf("vonage: room id is required")
	}
	return r.c.Request(ctx, "/v1/meetings/rooms/"+url.PathEscape(roomID), nil, http.MethodGet)
}

func (r *Rooms) Create(ctx context.Context, params map[string]any) (*Response, error) {
	if s, _ := params["display_name"].(string); s == "" {
		return nil, fmt.Errorf("vonage: display_name is required")
	}
	return r.c.Request(ctx, "/v1/meetings/rooms", params, http.MethodPost)
}
