package vonage_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vonage_relay/internal/adapters/vonage"
	"vonage_relay/internal/domain"
)

func newGateway(t *testing.T, apiHost, meetingsHost string) *vonage.Gateway {
	t.Helper()
	g, err := vonage.NewGateway(vonage.Config{
		APIHost:         apiHost,
		MeetingsHost:    meetingsHost,
		Tokens:          vonage.StaticToken("tok"),
		SignatureSecret: secret,
	})
	require.NoError(t, err)
	return g
}

func TestGateway_ListRooms(t *testing.T) {
	meetings := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/meetings/rooms", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("page_size"))
		_, _ = w.Write([]byte(`{"page_size":2,"total_items":3,"_embedded":{"rooms":[{"id":"r1"},{"id":"r2"}]},"_links":{"next":{"href":"/next"}}}`))
	}))
	defer meetings.Close()

	g := newGateway(t, "http://unused", meetings.URL)
	page, err := g.ListRooms(context.Background(), domain.RoomsQuery{PageSize: 5})
	require.NoError(t, err)
	require.Equal(t, []map[string]any{{"id": "r1"}, {"id": "r2"}}, page.Items)
	require.NotNil(t, page.Next)
	require.Equal(t, "/next", *page.Next)
	require.Equal(t, 3, page.Total)
}

func TestGateway_ListRoomsMissingEmbedded(t *testing.T) {
	meetings := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page_size":0}`))
	}))
	defer meetings.Close()

	_, err := newGateway(t, "http://unused", meetings.URL).ListRooms(context.Background(), domain.RoomsQuery{})
	require.ErrorIs(t, err, vonage.ErrMissingEmbedded)
}

func TestGateway_GetRoomNotFound(t *testing.T) {
	meetings := httptest.NewServer(http.NotFoundHandler())
	defer meetings.Close()

	_, err := newGateway(t, "http://unused", meetings.URL).GetRoom(context.Background(), "nope")
	require.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestGateway_SendMessageInvalid(t *testing.T) {
	g := newGateway(t, "http://unused", "http://unused")
	_, err := g.SendMessage(context.Background(), domain.OutboundMessage{Channel: "sms", MessageType: "image", Content: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = g.SendMessage(context.Background(), domain.OutboundMessage{Channel: "sms", MessageType: "text", Content: "hi"})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "missing to/from must fail before any request")
}

func TestGateway_SendMessage(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref-1", body["client_ref"])
		assert.Equal(t, "whatsapp", body["channel"])
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"message_uuid":"m-9","workflow_id":"wf-1"}`))
	}))
	defer api.Close()

	res, err := newGateway(t, api.URL, "http://unused").SendMessage(context.Background(), domain.OutboundMessage{
		To: "447700900000", From: "447700900001", Channel: "whatsapp", MessageType: "text", Content: "hi", ClientRef: "ref-1",
	})
	require.NoError(t, err)
	require.Equal(t, "m-9", res.MessageUUID)
	require.NotNil(t, res.WorkflowID)
	require.Equal(t, "wf-1", *res.WorkflowID)
}

func TestGateway_VerifyWebhook(t *testing.T) {
	g := newGateway(t, "http://unused", "http://unused")
	body := []byte(`{"message_uuid":"m-1"}`)
	sum := sha256.Sum256(body)
	token := signHS256(t, jwt.MapClaims{"payload_hash": hex.EncodeToString(sum[:])}, secret)

	require.True(t, g.VerifyWebhook("Bearer "+token, body))
	require.True(t, g.VerifyWebhook(token, body))
	require.False(t, g.VerifyWebhook("Bearer "+token, []byte(`{}`)))
	require.False(t, g.VerifyWebhook("Bearer ", body))
}
