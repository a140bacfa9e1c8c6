package session

import (
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

// Conversation is one traveler's slot-filling dialogue: the turns so far
// and the trip request draft accumulated from them.
type Conversation struct {
	Turns []types.ConversationTurn
	Draft types.DraftTripRequest
}

// Store keeps conversations in an in-process TTL cache. Entries expire a
// day after their last write; an hourly sweep evicts them.
type Store struct {
	cache  *cache.Cache
	logger *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		cache:  cache.New(24*time.Hour, 1*time.Hour),
		logger: logger,
	}
}

// Get returns the conversation for a session id, or a fresh one.
func (s *Store) Get(sessionID string) *Conversation {
	if v, ok := s.cache.Get(sessionID); ok {
		if conv, ok := v.(*Conversation); ok {
			return conv
		}
	}
	return &Conversation{}
}

// Save writes the conversation back, resetting its TTL.
func (s *Store) Save(sessionID string, conv *Conversation) {
	s.cache.Set(sessionID, conv, cache.DefaultExpiration)
}

// Delete removes a session, typically after a plan has been produced.
func (s *Store) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}
