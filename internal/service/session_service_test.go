package service

import (
	"errors"
	"testing"
	"time"

	"github.com/comanda-next/internal/config"
)

func TestSessionIssueAndParse(t *testing.T) {
	svc := NewSessionService(config.SessionConfig{Secret: "s3cret", ExpireHours: 1})
	issued, err := svc.Issue()
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if issued.SessionID == "" || issued.Token == "" {
		t.Fatalf("unexpected session: %+v", issued)
	}
	sessionID, err := svc.Parse(issued.Token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sessionID != issued.SessionID {
		t.Fatalf("expected %s, got %s", issued.SessionID, sessionID)
	}
}

func TestSessionParseRejectsForeignAndExpired(t *testing.T) {
	issuer := NewSessionService(config.SessionConfig{Secret: "other", ExpireHours: 1})
	foreign, _ := issuer.Issue()

	svc := NewSessionService(config.SessionConfig{Secret: "s3cret", ExpireHours: 1})
	if _, err := svc.Parse(foreign.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
	if _, err := svc.Parse(""); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for empty token, got %v", err)
	}

	issued, _ := svc.Issue()
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Parse(issued.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}
