package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vonage_relay/internal/app"
	"vonage_relay/internal/domain"
)

func smsTo(to string) domain.OutboundMessage {
	return domain.OutboundMessage{To: to, From: "Relay", Channel: "sms", MessageType: "text", Content: "hello"}
}

func TestSend_RecordsMessageWithGeneratedRef(t *testing.T) {
	gw := &fakeGateway{}
	repo := &fakeRepo{}
	s := app.NewMessageService(gw, repo)

	res, err := s.Send(context.Background(), smsTo(" 447700900000 "))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.MessageUUID != "uuid-447700900000" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(gw.sent) != 1 || gw.sent[0].ClientRef == "" {
		t.Fatalf("expected one send with a client_ref, got %+v", gw.sent)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("expected message recorded, got %d", len(repo.messages))
	}
	rec := repo.messages[0]
	if rec.MessageUUID != res.MessageUUID || rec.ClientRef != gw.sent[0].ClientRef || rec.CreatedAt.IsZero() {
		t.Fatalf("unexpected record: %+v", rec)
	}
	var raw map[string]any
	if err := json.Unmarshal(rec.RawJSON, &raw); err != nil || raw["content"] != "hello" {
		t.Fatalf("unexpected raw record %s (%v)", rec.RawJSON, err)
	}
}

func TestSend_KeepsCallerRef(t *testing.T) {
	gw := &fakeGateway{}
	s := app.NewMessageService(gw, &fakeRepo{})
	m := smsTo("447700900000")
	m.ClientRef = "order-42"

	if _, err := s.Send(context.Background(), m); err != nil {
		t.Fatalf("err: %v", err)
	}
	if gw.sent[0].ClientRef != "order-42" {
		t.Fatalf("client_ref overwritten: %q", gw.sent[0].ClientRef)
	}
}

func TestSend_MissingAddressing(t *testing.T) {
	gw := &fakeGateway{}
	s := app.NewMessageService(gw, &fakeRepo{})

	_, err := s.Send(context.Background(), smsTo("  "))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(gw.sent) != 0 {
		t.Fatalf("gateway must not be called")
	}
}

func TestSend_GatewayErrorPropagatesUnrecorded(t *testing.T) {
	boom := errors.New("transport down")
	gw := &fakeGateway{sendErr: func(string) error { return boom }}
	repo := &fakeRepo{}
	s := app.NewMessageService(gw, repo)

	_, err := s.Send(context.Background(), smsTo("447700900000"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error unchanged, got %v", err)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("failed send must not be recorded")
	}
}

func TestSend_RepoErrorKeepsResult(t *testing.T) {
	repo := &fakeRepo{insErr: errors.New("db gone")}
	s := app.NewMessageService(&fakeGateway{}, repo)

	res, err := s.Send(context.Background(), smsTo("447700900000"))
	if err == nil {
		t.Fatalf("expected bookkeeping error")
	}
	if res.MessageUUID == "" {
		t.Fatalf("expected the accepted uuid alongside the error")
	}
}
