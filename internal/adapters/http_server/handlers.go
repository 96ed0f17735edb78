// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"vonage_relay/internal/app"
	"vonage_relay/internal/domain"
)

const (
	maxWebhookBody = 1 << 20
	maxSendBody    = 64 << 10
)

type Handlers struct {
	Msgs     *app.MessageService
	Webhooks *app.WebhookService
	Q        *app.QueryService
	Limiter  *RateLimiter
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type sendRequest struct {
	To          string         `json:"to" validate:"required,max=50"`
	From        string         `json:"from" validate:"required,max=50"`
	Channel     string         `json:"channel" validate:"required,oneof=sms mms whatsapp messenger viber_service"`
	MessageType string         `json:"message_type" validate:"required"`
	Content     any            `json:"content" validate:"required"`
	Opts        map[string]any `json:"opts,omitempty"`
	ClientRef   string         `json:"client_ref,omitempty" validate:"omitempty,max=100"`
}

type sendResponse struct {
	MessageUUID string  `json:"message_uuid"`
	WorkflowID  *string `json:"workflow_id,omitempty"`
}

type eventView struct {
	Kind      string          `json:"kind"`
	Status    *string         `json:"status,omitempty"`
	From      *string         `json:"from,omitempty"`
	To        *string         `json:"to,omitempty"`
	Channel   *string         `json:"channel,omitempty"`
	ClientRef *string         `json:"client_ref,omitempty"`
	Timestamp *string         `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Post("/v1/messages", h.sendMessage)
	s.mux.Get("/v1/messages/{uuid}/events", h.listEvents)
	s.mux.Get("/v1/rooms", h.listRooms)
	s.mux.Get("/v1/rooms/{id}", h.getRoom)

	s.mux.Group(func(r chi.Router) {
		if h.Limiter != nil {
			r.Use(h.Limiter.Handler)
		}
		r.Post("/webhooks/inbound", h.webhook(domain.EventInbound))
		r.Post("/webhooks/status", h.webhook(domain.EventStatus))
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrInvalidSignature):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid webhook token")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "upstream request failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

// writeCached writes v with a weak ETag, answering 304 when the client
// already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSendBody))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON send request")
		return
	}
	if err := validateStruct(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	res, err := h.Msgs.Send(r.Context(), domain.OutboundMessage{
		To:          req.To,
		From:        req.From,
		Channel:     req.Channel,
		MessageType: req.MessageType,
		Content:     req.Content,
		Opts:        req.Opts,
		ClientRef:   req.ClientRef,
	})
	if err != nil && res.MessageUUID == "" {
		writeError(w, err)
		return
	}
	if err != nil {
		// accepted upstream but not recorded locally
		log.Error().Err(err).Str("message_uuid", res.MessageUUID).Msg("send bookkeeping failed")
	}
	writeJSON(w, http.StatusAccepted, sendResponse{MessageUUID: res.MessageUUID, WorkflowID: res.WorkflowID})
}

func (h *Handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	page, err := h.Q.ListEvents(r.Context(), chi.URLParam(r, "uuid"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]eventView, 0, len(page.Items))
	for _, e := range page.Items {
		v := eventView{
			Kind: string(e.Kind), Status: e.Status, From: e.From, To: e.To,
			Channel: e.Channel, ClientRef: e.ClientRef,
		}
		if e.Timestamp != nil {
			ts := e.Timestamp.Format(time.RFC3339)
			v.Timestamp = &ts
		}
		if json.Valid(e.RawJSON) {
			v.Payload = e.RawJSON
		}
		views = append(views, v)
	}
	writeCached(w, r, map[string]any{"items": views})
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	q := domain.RoomsQuery{
		StartID: r.URL.Query().Get("start_id"),
		EndID:   r.URL.Query().Get("end_id"),
	}
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		n, err := strconv.Atoi(ps)
		if err != nil || n <= 0 || n > 1000 {
			writeProblem(w, http.StatusBadRequest, "Invalid page_size", "page_size must be an integer between 1 and 1000")
			return
		}
		q.PageSize = n
	}
	page, err := h.Q.ListRooms(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	if page.Items == nil {
		page.Items = []map[string]any{}
	}
	writeCached(w, r, map[string]any{"items": page.Items, "next": page.Next, "total_items": page.Total})
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.Q.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, room)
}

// webhook always answers 200 on success so Vonage stops redelivering.
func (h *Handlers) webhook(kind domain.EventKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "webhook body exceeds 1MiB")
			return
		}
		token := strings.TrimSpace(r.Header.Get("Authorization"))
		if _, err := h.Webhooks.Handle(r.Context(), kind, token, body); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
