package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"confess-bot/internal/models"
)

type fakePersister struct {
	fail            bool
	removedTimeouts chan int64
}

func (f *fakePersister) AddBan(ctx context.Context, userID int64) error     { return f.err() }
func (f *fakePersister) RemoveBan(ctx context.Context, userID int64) error  { return f.err() }
func (f *fakePersister) AddWord(ctx context.Context, word string) error     { return f.err() }
func (f *fakePersister) RemoveWord(ctx context.Context, word string) error  { return f.err() }
func (f *fakePersister) SetToggle(ctx context.Context, name string, enabled bool) error {
	return f.err()
}

func (f *fakePersister) SetTimeout(ctx context.Context, userID int64, expiresAt time.Time) error {
	return f.err()
}

func (f *fakePersister) RemoveTimeout(ctx context.Context, userID int64) error {
	if f.removedTimeouts != nil {
		f.removedTimeouts <- userID
	}
	return f.err()
}

func (f *fakePersister) err() error {
	if f.fail {
		return errors.New("persist failed")
	}
	return nil
}

func TestBans(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	if s.IsBanned(1) {
		t.Error("IsBanned() on empty store = true")
	}

	if err := s.Ban(ctx, 1); err != nil {
		t.Fatalf("Ban() error = %v", err)
	}
	if !s.IsBanned(1) {
		t.Error("IsBanned() after Ban = false")
	}

	if err := s.Unban(ctx, 1); err != nil {
		t.Fatalf("Unban() error = %v", err)
	}
	if s.IsBanned(1) {
		t.Error("IsBanned() after Unban = true")
	}
}

func TestPersistFailureKeepsMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	s := New(&fakePersister{fail: true})

	if err := s.Ban(ctx, 1); err == nil {
		t.Fatal("Ban() error = nil, want persist failure")
	}
	if s.IsBanned(1) {
		t.Error("ban became visible despite failed persist")
	}

	if err := s.AddWord(ctx, "spam"); err == nil {
		t.Fatal("AddWord() error = nil, want persist failure")
	}
	if s.MatchesBannedWord("spam") {
		t.Error("word became visible despite failed persist")
	}
}

func TestMatchesBannedWord(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.AddWord(ctx, "VGK")
	s.AddWord(ctx, "cp")

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"whole word lowercase", "go vgk go", true},
		{"whole word mixed case", "Go VGK go", true},
		{"exact match", "cp", true},
		{"exact match uppercase", "CP", true},
		{"word at start", "cp is not allowed", true},
		{"word at end", "no more cp", true},
		{"word with punctuation", "really, cp?", true},
		{"substring only", "capcake topcpot", false},
		{"unrelated text", "a perfectly fine confession", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.MatchesBannedWord(tt.text); got != tt.want {
				t.Errorf("MatchesBannedWord(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestRemoveWord(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.AddWord(ctx, "spam")
	s.RemoveWord(ctx, "SPAM")

	if s.MatchesBannedWord("spam") {
		t.Error("word still matches after removal")
	}
}

func TestWordsSorted(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.AddWord(ctx, "zebra")
	s.AddWord(ctx, "Apple")

	words := s.Words()
	if len(words) != 2 || words[0] != "apple" || words[1] != "zebra" {
		t.Errorf("Words() = %v, want [apple zebra]", words)
	}
}

func TestTimeoutRemaining(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)
	s := New(nil)

	if got := s.TimeoutRemaining(1, now); got != 0 {
		t.Errorf("TimeoutRemaining() without timeout = %v, want 0", got)
	}

	s.SetTimeout(ctx, 1, now.Add(10*time.Minute))
	if got := s.TimeoutRemaining(1, now); got != 10*time.Minute {
		t.Errorf("TimeoutRemaining() = %v, want 10m", got)
	}
}

func TestTimeoutLazyEviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)
	removed := make(chan int64, 1)
	s := New(&fakePersister{removedTimeouts: removed})

	s.SetTimeout(ctx, 1, now.Add(time.Minute))

	if got := s.TimeoutRemaining(1, now.Add(time.Minute)); got != 0 {
		t.Errorf("TimeoutRemaining() at expiry = %v, want 0", got)
	}

	select {
	case id := <-removed:
		if id != 1 {
			t.Errorf("evicted user = %d, want 1", id)
		}
	case <-time.After(time.Second):
		t.Fatal("expired timeout was not evicted from the persister")
	}

	if got := s.TimeoutRemaining(1, now); got != 0 {
		t.Errorf("TimeoutRemaining() after eviction = %v, want 0", got)
	}
}

func TestToggles(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	if !s.PhotosEnabled() || !s.LinksEnabled() {
		t.Error("toggles should default to enabled")
	}

	s.SetPhotosEnabled(ctx, false)
	s.SetLinksEnabled(ctx, false)

	if s.PhotosEnabled() || s.LinksEnabled() {
		t.Error("toggles still enabled after disabling")
	}
}

func TestSeed(t *testing.T) {
	now := time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)
	s := New(nil)

	s.Seed(
		[]int64{5},
		[]string{"VGK"},
		[]models.Timeout{{UserID: 9, ExpiresAt: now.Add(time.Hour)}},
		map[string]bool{TogglePhotos: false},
	)

	if !s.IsBanned(5) {
		t.Error("seeded ban missing")
	}
	if !s.MatchesBannedWord("vgk again") {
		t.Error("seeded word not matching")
	}
	if got := s.TimeoutRemaining(9, now); got != time.Hour {
		t.Errorf("seeded timeout remaining = %v, want 1h", got)
	}
	if s.PhotosEnabled() {
		t.Error("seeded photo toggle not applied")
	}
	if !s.LinksEnabled() {
		t.Error("unseeded link toggle should keep its default")
	}
}
