package vonage_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vonage_relay/internal/adapters/vonage"
)

func TestMessaging_Send(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sms", body["channel"])
		assert.Equal(t, "Hello world!", body["text"])
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"message_uuid":"m-1"}`))
	}))
	defer ts.Close()

	msg, err := vonage.SMS("Hello world!", nil)
	require.NoError(t, err)

	m := vonage.NewMessaging(newClient(t, ts.URL), secret, nil)
	resp, err := m.Send(context.Background(), msg.Params("447700900000", "447700900001"))
	require.NoError(t, err)
	require.Equal(t, "m-1", resp.Entity.String("message_uuid"))
}

func TestMessaging_SendRejectsIncompleteParams(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer ts.Close()

	m := vonage.NewMessaging(newClient(t, ts.URL), secret, nil)
	_, err := m.Send(context.Background(), map[string]any{"to": "447700900000", "channel": "sms"})
	require.True(t, errors.Is(err, vonage.ErrInvalidMessage))
	require.Zero(t, atomic.LoadInt32(&hits))
}

func TestMessaging_VerifyWebhookToken(t *testing.T) {
	m := vonage.NewMessaging(newClient(t, "http://unused"), secret, nil)
	token := signHS256(t, jwt.MapClaims{"jti": "x"}, secret)

	require.True(t, m.VerifyWebhookToken(token))
	require.False(t, m.VerifyWebhookTokenWithSecret(token, "rotated"))
	require.True(t, vonage.NewMessaging(newClient(t, "http://unused"), "", nil).VerifyWebhookTokenWithSecret(token, secret))
}

func TestNewMessage_Validation(t *testing.T) {
	_, err := vonage.NewMessage("carrier_pigeon", "text", "hi", nil)
	require.ErrorIs(t, err, vonage.ErrInvalidMessage)

	_, err = vonage.NewMessage(vonage.ChannelSMS, "image", map[string]any{"url": "https://x/y.png"}, nil)
	require.ErrorIs(t, err, vonage.ErrInvalidMessage)

	_, err = vonage.WhatsApp("image", "not-an-object", nil)
	require.ErrorIs(t, err, vonage.ErrInvalidMessage)

	_, err = vonage.SMS("", nil)
	require.ErrorIs(t, err, vonage.ErrInvalidMessage)

	img, err := vonage.MMS("image", map[string]any{"url": "https://x/y.png"}, map[string]any{"client_ref": "c-1", "to": "ignored"})
	require.NoError(t, err)
	p := img.Params("447700900000", "447700900001")
	require.Equal(t, "447700900000", p["to"])
	require.Equal(t, "image", p["message_type"])
	require.Equal(t, map[string]any{"url": "https://x/y.png"}, p["image"])
	require.Equal(t, "c-1", p["client_ref"])
}
