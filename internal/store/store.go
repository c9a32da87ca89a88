package store

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"confess-bot/internal/models"
	"confess-bot/pkg/logger"
)

const (
	TogglePhotos = "photos"
	ToggleLinks  = "links"
)

// Persister makes admin mutations durable before they become visible
// to the gate. A nil persister keeps everything in memory.
type Persister interface {
	AddBan(ctx context.Context, userID int64) error
	RemoveBan(ctx context.Context, userID int64) error
	AddWord(ctx context.Context, word string) error
	RemoveWord(ctx context.Context, word string) error
	SetTimeout(ctx context.Context, userID int64, expiresAt time.Time) error
	RemoveTimeout(ctx context.Context, userID int64) error
	SetToggle(ctx context.Context, name string, enabled bool) error
}

type Store struct {
	mu       sync.Mutex
	persist  Persister
	bans     map[int64]struct{}
	words    map[string]*regexp.Regexp
	timeouts map[int64]time.Time
	photos   bool
	links    bool
}

func New(p Persister) *Store {
	return &Store{
		persist:  p,
		bans:     make(map[int64]struct{}),
		words:    make(map[string]*regexp.Regexp),
		timeouts: make(map[int64]time.Time),
		photos:   true,
		links:    true,
	}
}

func (s *Store) Seed(bans []int64, words []string, timeouts []models.Timeout, toggles map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range bans {
		s.bans[id] = struct{}{}
	}
	for _, w := range words {
		s.words[strings.ToLower(w)] = wordPattern(w)
	}
	for _, t := range timeouts {
		s.timeouts[t.UserID] = t.ExpiresAt
	}
	if v, ok := toggles[TogglePhotos]; ok {
		s.photos = v
	}
	if v, ok := toggles[ToggleLinks]; ok {
		s.links = v
	}
}

func wordPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(word)) + `\b`)
}

func (s *Store) Ban(ctx context.Context, userID int64) error {
	if s.persist != nil {
		if err := s.persist.AddBan(ctx, userID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.bans[userID] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *Store) Unban(ctx context.Context, userID int64) error {
	if s.persist != nil {
		if err := s.persist.RemoveBan(ctx, userID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	delete(s.bans, userID)
	s.mu.Unlock()
	return nil
}

func (s *Store) IsBanned(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bans[userID]
	return ok
}

func (s *Store) AddWord(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if s.persist != nil {
		if err := s.persist.AddWord(ctx, word); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.words[word] = wordPattern(word)
	s.mu.Unlock()
	return nil
}

func (s *Store) RemoveWord(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if s.persist != nil {
		if err := s.persist.RemoveWord(ctx, word); err != nil {
			return err
		}
	}

	s.mu.Lock()
	delete(s.words, word)
	s.mu.Unlock()
	return nil
}

func (s *Store) Words() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	words := make([]string, 0, len(s.words))
	for w := range s.words {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// MatchesBannedWord reports whether the lowercased text contains any
// banned term as a whole word, or equals one exactly.
func (s *Store) MatchesBannedWord(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	for word, pattern := range s.words {
		if lowered == word || pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

func (s *Store) SetTimeout(ctx context.Context, userID int64, expiresAt time.Time) error {
	if s.persist != nil {
		if err := s.persist.SetTimeout(ctx, userID, expiresAt); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.timeouts[userID] = expiresAt
	s.mu.Unlock()
	return nil
}

func (s *Store) ClearTimeout(ctx context.Context, userID int64) error {
	if s.persist != nil {
		if err := s.persist.RemoveTimeout(ctx, userID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	delete(s.timeouts, userID)
	s.mu.Unlock()
	return nil
}

// TimeoutRemaining returns how long the submitter's timeout still has
// to run. An expired entry is evicted on observation; the durable row
// is removed in the background since an expired row is ignored anyway.
func (s *Store) TimeoutRemaining(userID int64, now time.Time) time.Duration {
	s.mu.Lock()
	expiresAt, ok := s.timeouts[userID]
	if !ok {
		s.mu.Unlock()
		return 0
	}

	if !expiresAt.After(now) {
		delete(s.timeouts, userID)
		s.mu.Unlock()

		if s.persist != nil {
			go func() {
				if err := s.persist.RemoveTimeout(context.Background(), userID); err != nil {
					logger.Warn("Failed to evict expired timeout",
						logger.Err(err),
						logger.Int64("user_id", userID),
					)
				}
			}()
		}
		return 0
	}

	remaining := expiresAt.Sub(now)
	s.mu.Unlock()
	return remaining
}

func (s *Store) SetPhotosEnabled(ctx context.Context, enabled bool) error {
	if s.persist != nil {
		if err := s.persist.SetToggle(ctx, TogglePhotos, enabled); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.photos = enabled
	s.mu.Unlock()
	return nil
}

func (s *Store) SetLinksEnabled(ctx context.Context, enabled bool) error {
	if s.persist != nil {
		if err := s.persist.SetToggle(ctx, ToggleLinks, enabled); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.links = enabled
	s.mu.Unlock()
	return nil
}

func (s *Store) PhotosEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photos
}

func (s *Store) LinksEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links
}
