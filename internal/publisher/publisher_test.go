package publisher

import (
	"context"
	"errors"
	"testing"

	"confess-bot/internal/models"
)

type fakeChannel struct {
	publishErr error
	messageID  int
	published  []models.Submission
}

func (f *fakeChannel) Publish(destination string, sub models.Submission) (int, error) {
	if f.publishErr != nil {
		return 0, f.publishErr
	}
	f.published = append(f.published, sub)
	return f.messageID, nil
}

func (f *fakeChannel) Delete(destination string, messageID int) error {
	return nil
}

type fakeSink struct {
	appendErr error
	records   []models.AuditRecord
}

func (f *fakeSink) Append(ctx context.Context, rec *models.AuditRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, *rec)
	return nil
}

func TestRunPublishesAndAudits(t *testing.T) {
	ch := &fakeChannel{messageID: 42}
	sink := &fakeSink{}
	p := New(ch, sink, "-1001234567890")

	sub := models.Submission{Kind: models.KindText, Text: "hello"}
	rec := models.AuditRecord{UserID: 1, Content: "hello", Kind: models.KindText}

	p.Run(context.Background(), sub, rec)

	if len(ch.published) != 1 {
		t.Fatalf("published = %d, want 1", len(ch.published))
	}
	if len(sink.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(sink.records))
	}

	got := sink.records[0]
	if got.Action != models.ActionPublish {
		t.Errorf("Action = %v, want %v", got.Action, models.ActionPublish)
	}
	if got.MessageID != 42 {
		t.Errorf("MessageID = %v, want 42", got.MessageID)
	}
}

func TestRunPublishFailureSkipsAudit(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("chat not found")}
	sink := &fakeSink{}
	p := New(ch, sink, "-1001234567890")

	p.Run(context.Background(), models.Submission{Kind: models.KindText, Text: "hello"}, models.AuditRecord{UserID: 1})

	if len(sink.records) != 0 {
		t.Errorf("audit records = %d, want 0", len(sink.records))
	}
}

func TestRunAuditFailureIsSwallowed(t *testing.T) {
	ch := &fakeChannel{messageID: 42}
	sink := &fakeSink{appendErr: errors.New("nats down")}
	p := New(ch, sink, "-1001234567890")

	// The publish already happened; a failed audit write is logged only.
	p.Run(context.Background(), models.Submission{Kind: models.KindText, Text: "hello"}, models.AuditRecord{UserID: 1})

	if len(ch.published) != 1 {
		t.Errorf("published = %d, want 1", len(ch.published))
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"too many requests", errors.New("telegram: Too Many Requests (429)"), true},
		{"retry after", errors.New("telegram: retry after 5 (429)"), true},
		{"other error", errors.New("chat not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimited(tt.err); got != tt.want {
				t.Errorf("isRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
