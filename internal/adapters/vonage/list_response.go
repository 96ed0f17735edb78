package vonage

import (
	"fmt"
	"iter"
)

// ListResponse is a page of items decoded from a response's "_embedded"
// field. It is a read-only, order-preserving view: the request has already
// completed, so there is nothing to close.
type ListResponse struct {
	resp  *Response
	items []Entity
}

// NewListResponse decodes the embedded sequence of resp. "_embedded" may be
// the item array itself or an object holding it under key. An absent or null
// sequence is reported as ErrMissingEmbedded; an empty one is fine.
func NewListResponse(resp *Response, key string) (*ListResponse, error) {
	if resp == nil {
		return nil, ErrMissingEmbedded
	}
	raw, ok := resp.Entity["_embedded"]
	if !ok || raw == nil {
		return nil, ErrMissingEmbedded
	}
	if obj, ok := asObject(raw); ok {
		raw, ok = obj[key]
		if !ok || raw == nil {
			return nil, fmt.Errorf("%w: no %q collection", ErrMissingEmbedded, key)
		}
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: embedded value is %T, want array", ErrMissingEmbedded, raw)
	}
	items := make([]Entity, 0, len(arr))
	for i, v := range arr {
		obj, ok := asObject(v)
		if !ok {
			return nil, fmt.Errorf("vonage: embedded item %d is %T, want object", i, v)
		}
		items = append(items, Entity(obj))
	}
	return &ListResponse{resp: resp, items: items}, nil
}

// Iterate returns a lazy sequence over the items in their original order.
// Every call returns a fresh sequence; wrap it with iter.Pull for a
// single-pass enumerator.
func (l *ListResponse) Iterate() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, it := range l.items {
			if !yield(it) {
				return
			}
		}
	}
}

// Each calls fn once per item, in order, before returning.
func (l *ListResponse) Each(fn func(Entity)) {
	for _, it := range l.items {
		fn(it)
	}
}

// Len is the number of items on this page.
func (l *ListResponse) Len() int { return len(l.items) }

// Response is the page the items were decoded from.
func (l *ListResponse) Response() *Response { return l.resp }

// Next returns the href of the following page, if the API sent one.
func (l *ListResponse) Next() (string, bool) {
	href := l.resp.Entity.String("_links.next.href")
	return href, href != ""
}

// PageSize is the page_size the API reported, or 0.
func (l *ListResponse) PageSize() int { return l.resp.Entity.Int("page_size") }

// TotalItems is the total_items count across all pages, or 0 when absent.
func (l *ListResponse) TotalItems() int { return l.resp.Entity.Int("total_items") }
