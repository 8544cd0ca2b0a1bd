package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/model"
	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

const (
	maxMessageLength = 1000

	EventNewMessage = "chat:new_message"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrTooLong       = errors.New("message is too long")
	ErrMatchNotFound = errors.New("match not found")
	ErrNotMutual     = errors.New("users are not mutually matched")
)

var htmlPolicy = bluemonday.StrictPolicy()

type MatchStore interface {
	GetByID(ctx context.Context, swipeID int64) (pgrepo.SwipeRecord, error)
	FindMutualBetween(ctx context.Context, userA, userB int64) (pgrepo.SwipeRecord, error)
}

type MessageStore interface {
	Insert(ctx context.Context, matchID, fromUserID, toUserID int64, message string) (pgrepo.ChatMessageRecord, error)
	ListByMatch(ctx context.Context, matchID int64) ([]pgrepo.ChatMessageRecord, error)
}

// Broadcaster pushes an event to every live subscriber of a
// conversation room. Delivery is best effort; persistence never
// depends on it.
type Broadcaster interface {
	Publish(room int64, event string, payload any)
}

// Message is the conversation entry handed to transports.
type Message = model.ChatMessage

type Service struct {
	matches     MatchStore
	messages    MessageStore
	broadcaster Broadcaster
}

type Dependencies struct {
	Matches     MatchStore
	Messages    MessageStore
	Broadcaster Broadcaster
}

func NewService(deps Dependencies) *Service {
	return &Service{
		matches:     deps.Matches,
		messages:    deps.Messages,
		broadcaster: deps.Broadcaster,
	}
}

// conversation is the resolved view of a match: the canonical row id
// both directions share, plus the caller's counterpart.
type conversation struct {
	ID            int64
	CounterpartID int64
}

// resolve verifies that matchID names a mutual match with userID as a
// participant, then normalizes it to the pair's canonical row. After
// promotion both ledger rows are mutual, and each user knows their own
// row's id from the swipe response; without normalization the same
// conversation would split into two disjoint histories. The check runs
// against current data on every call so a moderation unmatch takes
// effect on the next message, not the next login.
func (s *Service) resolve(ctx context.Context, userID, matchID int64) (conversation, error) {
	if userID <= 0 || matchID <= 0 {
		return conversation{}, ErrValidation
	}
	if s.matches == nil {
		return conversation{}, fmt.Errorf("match store is nil")
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrSwipeNotFound) {
			return conversation{}, ErrMatchNotFound
		}
		return conversation{}, fmt.Errorf("load match: %w", err)
	}
	if !match.IsMutual {
		return conversation{}, ErrNotMutual
	}

	var counterpartID int64
	switch userID {
	case match.FromUserID:
		counterpartID = match.ToUserID
	case match.ToUserID:
		counterpartID = match.FromUserID
	default:
		return conversation{}, ErrNotMutual
	}

	canonical, err := s.matches.FindMutualBetween(ctx, match.FromUserID, match.ToUserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrSwipeNotFound) {
			return conversation{}, ErrNotMutual
		}
		return conversation{}, fmt.Errorf("resolve canonical match: %w", err)
	}

	return conversation{ID: canonical.ID, CounterpartID: counterpartID}, nil
}

// Authorize gates access to a conversation and returns its canonical
// id. Callers must key rooms and lookups by the returned id, not the
// one they were given.
func (s *Service) Authorize(ctx context.Context, userID, matchID int64) (int64, error) {
	conv, err := s.resolve(ctx, userID, matchID)
	if err != nil {
		return 0, err
	}
	return conv.ID, nil
}

// Send persists a message in the conversation and then broadcasts it
// to live subscribers. The recipient is always derived from the match
// row, never taken from the caller.
func (s *Service) Send(ctx context.Context, userID, matchID int64, content string) (Message, error) {
	conv, err := s.resolve(ctx, userID, matchID)
	if err != nil {
		return Message{}, err
	}

	cleaned, err := sanitizeContent(content)
	if err != nil {
		return Message{}, err
	}
	if s.messages == nil {
		return Message{}, fmt.Errorf("message store is nil")
	}

	rec, err := s.messages.Insert(ctx, conv.ID, userID, conv.CounterpartID, cleaned)
	if err != nil {
		return Message{}, fmt.Errorf("insert chat message: %w", err)
	}

	msg := fromRecord(rec)
	if s.broadcaster != nil {
		s.broadcaster.Publish(conv.ID, EventNewMessage, msg)
	}

	return msg, nil
}

// History returns the full conversation oldest first.
func (s *Service) History(ctx context.Context, userID, matchID int64) ([]Message, error) {
	conv, err := s.resolve(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if s.messages == nil {
		return nil, fmt.Errorf("message store is nil")
	}

	records, err := s.messages.ListByMatch(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	messages := make([]Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, fromRecord(rec))
	}
	return messages, nil
}

func sanitizeContent(content string) (string, error) {
	cleaned := strings.TrimSpace(htmlPolicy.Sanitize(content))
	if cleaned == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(cleaned) > maxMessageLength {
		return "", ErrTooLong
	}
	return cleaned, nil
}

func fromRecord(rec pgrepo.ChatMessageRecord) Message {
	return Message{
		ID:           rec.ID,
		MatchID:      rec.MatchID,
		FromUserID:   rec.FromUserID,
		ToUserID:     rec.ToUserID,
		FromUserName: rec.FromUserName,
		ToUserName:   rec.ToUserName,
		Message:      rec.Message,
		CreatedAt:    rec.CreatedAt,
	}
}
