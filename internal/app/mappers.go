package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vonage_relay/internal/domain"
)

/********** webhook field aliases **********/

// Inbound and status payloads differ slightly between channels; the first
// non-empty alias wins.
var eventAliases = map[string][]string{
	"message_uuid": {"message_uuid", "messageUuid"},
	"status":       {"status"},
	"from":         {"from", "from.number", "from.id"},
	"to":           {"to", "to.number", "to.id"},
	"channel":      {"channel"},
	"client_ref":   {"client_ref"},
	"timestamp":    {"timestamp", "date_time"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) *string {
	for _, p := range eventAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

/********** mappers **********/

// mapEvent decodes a webhook body. message_uuid is the only required field.
func mapEvent(kind domain.EventKind, body []byte) (domain.MessageEvent, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.MessageEvent{}, fmt.Errorf("%w: webhook body is not a JSON object: %v", domain.ErrInvalidInput, err)
	}
	uuid := deref(firstNonEmptyAlias(raw, "message_uuid"))
	if uuid == "" {
		return domain.MessageEvent{}, fmt.Errorf("%w: webhook has no message_uuid", domain.ErrInvalidInput)
	}
	ev := domain.MessageEvent{
		MessageUUID: uuid,
		Kind:        kind,
		From:        firstNonEmptyAlias(raw, "from"),
		To:          firstNonEmptyAlias(raw, "to"),
		Channel:     firstNonEmptyAlias(raw, "channel"),
		ClientRef:   firstNonEmptyAlias(raw, "client_ref"),
		RawJSON:     append([]byte(nil), body...),
	}
	if kind == domain.EventStatus {
		ev.Status = firstNonEmptyAlias(raw, "status")
	}
	if ts := firstNonEmptyAlias(raw, "timestamp"); ts != nil {
		if t, err := time.Parse(time.RFC3339, *ts); err == nil {
			u := t.UTC()
			ev.Timestamp = &u
		}
	}
	return ev, nil
}

// messageRecord is the stored form of an outbound request.
func messageRecord(m domain.OutboundMessage) []byte {
	b, err := json.Marshal(map[string]any{
		"to":           m.To,
		"from":         m.From,
		"channel":      m.Channel,
		"message_type": m.MessageType,
		"content":      m.Content,
		"opts":         m.Opts,
		"client_ref":   m.ClientRef,
	})
	if err != nil {
		return nil
	}
	return b
}
