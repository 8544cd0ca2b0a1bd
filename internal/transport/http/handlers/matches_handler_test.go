package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
	matchessvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/matches"
)

func TestMatchesListReturnsCounterpartData(t *testing.T) {
	matchedAt := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	store := matchStoreStub{
		rows: []pgrepo.MutualMatchRecord{
			{
				MatchID:         42,
				CounterpartID:   202,
				CounterpartName: "Asha",
				Photos:          []string{"https://cdn.example.com/a.jpg"},
				MatchedAt:       matchedAt,
			},
		},
	}
	h := NewMatchesHandler(matchessvc.NewService(store, nil))

	req := httptest.NewRequest(http.MethodGet, "/matches", nil)
	req = req.WithContext(testIdentity(101))
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		Matches []struct {
			MatchID  int64    `json:"matchId"`
			UserID   int64    `json:"userId"`
			FullName string   `json:"fullName"`
			Photos   []string `json:"photos"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(payload.Matches))
	}
	m := payload.Matches[0]
	if m.MatchID != 42 || m.UserID != 202 || m.FullName != "Asha" {
		t.Fatalf("unexpected match payload: %+v", m)
	}
	if len(m.Photos) != 1 || m.Photos[0] != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected photos: %+v", m.Photos)
	}
}

func TestMatchesListEmptyIsOK(t *testing.T) {
	h := NewMatchesHandler(matchessvc.NewService(matchStoreStub{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/matches", nil)
	req = req.WithContext(testIdentity(101))
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		Matches []json.RawMessage `json:"matches"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Matches == nil {
		t.Fatalf("matches must encode as an empty array, not null")
	}
}

func TestMatchesListRequiresAuth(t *testing.T) {
	h := NewMatchesHandler(matchessvc.NewService(matchStoreStub{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/matches", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

type matchStoreStub struct {
	rows []pgrepo.MutualMatchRecord
}

func (s matchStoreStub) ListMutualForUser(context.Context, int64, int) ([]pgrepo.MutualMatchRecord, error) {
	return s.rows, nil
}
