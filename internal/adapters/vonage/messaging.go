package vonage

import (
	"context"
	"fmt"
	"net/http"
)

// Messaging is the Messages API namespace.
type Messaging struct {
	c        *Client
	secret   string
	verifier SignatureVerifier
}

func NewMessaging(c *Client, signatureSecret string, v SignatureVerifier) *Messaging {
	if v == nil {
		v = HS256Verifier{}
	}
	return &Messaging{c: c, secret: signatureSecret, verifier: v}
}

// Send posts one message. params must carry to, from, channel and
// message_type plus the content field for that type; see Message.Params.
//
// https://developer.vonage.com/api/messages-olympus#SendMessage
func (m *Messaging) Send(ctx context.Context, params map[string]any) (*Response, error) {
	for _, k := range []string{"to", "from", "channel", "message_type"} {
		if s, _ := params[k].(string); s == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidMessage, k)
		}
	}
	return m.c.Request(ctx, "/v1/messages", params, http.MethodPost)
}

// VerifyWebhookToken checks the JWT from a Messages API webhook's
// Authorization header against the configured signature secret.
func (m *Messaging) VerifyWebhookToken(token string) bool {
	return m.VerifyWebhookTokenWithSecret(token, m.secret)
}

func (m *Messaging) VerifyWebhookTokenWithSecret(token, secret string) bool {
	return m.verifier.VerifySignature(token, secret)
}
