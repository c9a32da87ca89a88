package deletion

import (
	"context"
	"errors"
	"testing"
	"time"

	"confess-bot/internal/cooldown"
	"confess-bot/internal/models"
	"confess-bot/internal/store"
)

type fakeChannel struct {
	deleteErr error
	deleted   []int
}

func (f *fakeChannel) Publish(destination string, sub models.Submission) (int, error) {
	return 0, errors.New("not used")
}

func (f *fakeChannel) Delete(destination string, messageID int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

type fakeSink struct {
	records []models.AuditRecord
}

func (f *fakeSink) Append(ctx context.Context, rec *models.AuditRecord) error {
	f.records = append(f.records, *rec)
	return nil
}

const destination = "-1001234567890"

func newCoordinator(ch *fakeChannel, sink *fakeSink) (*Coordinator, *store.Store, *cooldown.Tracker) {
	st := store.New(nil)
	cd := cooldown.NewTracker(60 * time.Second)
	return New(st, cd, ch, sink, destination), st, cd
}

func rec(userID int64) models.AuditRecord {
	return models.AuditRecord{
		UserID:    userID,
		FirstName: "Test",
		Username:  "tester",
		Kind:      models.KindText,
		Content:   "the confession",
	}
}

func TestRequestDeletes(t *testing.T) {
	ch := &fakeChannel{}
	sink := &fakeSink{}
	c, _, _ := newCoordinator(ch, sink)
	now := time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)

	res := c.Request(context.Background(), rec(1), -1001234567890, "", 77, now)
	if res.Outcome != models.DeleteOK {
		t.Fatalf("Request() = %v, want %v", res.Outcome, models.DeleteOK)
	}

	if len(ch.deleted) != 1 || ch.deleted[0] != 77 {
		t.Errorf("deleted messages = %v, want [77]", ch.deleted)
	}

	if len(sink.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(sink.records))
	}
	got := sink.records[0]
	if got.Action != models.ActionDelete || got.MessageID != 77 || got.Content != "the confession" {
		t.Errorf("audit record = %+v", got)
	}
}

func TestRequestBanned(t *testing.T) {
	ch := &fakeChannel{}
	c, st, _ := newCoordinator(ch, &fakeSink{})
	now := time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)
	st.Ban(context.Background(), 1)

	res := c.Request(context.Background(), rec(1), -1001234567890, "", 77, now)
	if res.Outcome != models.DeleteBanned {
		t.Errorf("Request() = %v, want %v", res.Outcome, models.DeleteBanned)
	}
	if len(ch.deleted) != 0 {
		t.Error("delete issued for a banned submitter")
	}
}

func TestRequestWrongOrigin(t *testing.T) {
	ch := &fakeChannel{}
	c, _, cd := newCoordinator(ch, &fakeSink{})
	now := time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)

	res := c.Request(context.Background(), rec(1), -1009999999999, "", 77, now)
	if res.Outcome != models.DeleteWrongOrigin {
		t.Errorf("Request() = %v, want %v", res.Outcome, models.DeleteWrongOrigin)
	}
	if got := cd.Remaining(1, now); got != 0 {
		t.Errorf("cooldown stamped on origin mismatch: remaining = %v", got)
	}
}

func TestRequestCooldown(t *testing.T) {
	ch := &fakeChannel{}
	c, _, _ := newCoordinator(ch, &fakeSink{})
	now := time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)

	if res := c.Request(context.Background(), rec(1), -1001234567890, "", 77, now); res.Outcome != models.DeleteOK {
		t.Fatalf("first Request() = %v, want %v", res.Outcome, models.DeleteOK)
	}

	// Retries inside the window are rejected with shrinking remaining time.
	var prev time.Duration = time.Hour
	for _, offset := range []time.Duration{10 * time.Second, 30 * time.Second, 50 * time.Second} {
		res := c.Request(context.Background(), rec(1), -1001234567890, "", 78, now.Add(offset))
		if res.Outcome != models.DeleteCooldown {
			t.Fatalf("Request() at +%v = %v, want %v", offset, res.Outcome, models.DeleteCooldown)
		}
		if res.Remaining >= prev {
			t.Errorf("remaining not decreasing: %v then %v", prev, res.Remaining)
		}
		prev = res.Remaining
	}

	res := c.Request(context.Background(), rec(1), -1001234567890, "", 78, now.Add(60*time.Second))
	if res.Outcome != models.DeleteOK {
		t.Errorf("Request() after cooldown = %v, want %v", res.Outcome, models.DeleteOK)
	}
}

func TestRequestFailureDoesNotStampCooldown(t *testing.T) {
	ch := &fakeChannel{deleteErr: errors.New("message is too old")}
	sink := &fakeSink{}
	c, _, cd := newCoordinator(ch, sink)
	now := time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)

	res := c.Request(context.Background(), rec(1), -1001234567890, "", 77, now)
	if res.Outcome != models.DeleteFailed {
		t.Fatalf("Request() = %v, want %v", res.Outcome, models.DeleteFailed)
	}
	if res.Err == nil {
		t.Error("Failed result should carry the cause for logging")
	}
	if got := cd.Remaining(1, now); got != 0 {
		t.Errorf("cooldown stamped on failure: remaining = %v", got)
	}
	if len(sink.records) != 0 {
		t.Error("audit record emitted for a failed delete")
	}

	// An immediate retry is allowed once the channel recovers.
	ch.deleteErr = nil
	if res := c.Request(context.Background(), rec(1), -1001234567890, "", 77, now); res.Outcome != models.DeleteOK {
		t.Errorf("retry Request() = %v, want %v", res.Outcome, models.DeleteOK)
	}
}

func TestMatchesDestination(t *testing.T) {
	tests := []struct {
		name        string
		originID    int64
		originUser  string
		destination string
		want        bool
	}{
		{"exact id", -1001234567890, "", "-1001234567890", true},
		{"bare id in config", -1001234567890, "", "1234567890", true},
		{"prefixed config, bare origin", 1234567890, "", "-1001234567890", true},
		{"different channel", -1009999999999, "", "-1001234567890", false},
		{"username match", -1001234567890, "confessions", "@confessions", true},
		{"username case insensitive", -1001234567890, "Confessions", "@confessions", true},
		{"username mismatch", -1001234567890, "other", "@confessions", false},
		{"username config, empty origin username", -1001234567890, "", "@confessions", false},
		{"empty destination", -1001234567890, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchesDestination(tt.originID, tt.originUser, tt.destination)
			if got != tt.want {
				t.Errorf("MatchesDestination(%d, %q, %q) = %v, want %v",
					tt.originID, tt.originUser, tt.destination, got, tt.want)
			}
		})
	}
}
