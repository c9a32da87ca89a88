package models

import "time"

type Kind string

const (
	KindText  Kind = "text"
	KindPhoto Kind = "photo"
)

type Submission struct {
	Kind       Kind      `json:"kind"`
	Text       string    `json:"text"`
	PhotoID    string    `json:"photo_id"`
	Caption    string    `json:"caption"`
	HasLink    bool      `json:"has_link"`
	ReceivedAt time.Time `json:"received_at"`
}

func (s Submission) Body() string {
	if s.Kind == KindPhoto {
		return s.Caption
	}
	return s.Text
}

type Verdict string

const (
	VerdictAccept          Verdict = "accept"
	VerdictBanned          Verdict = "banned"
	VerdictTimeout         Verdict = "timeout"
	VerdictFeatureDisabled Verdict = "feature_disabled"
	VerdictBannedWord      Verdict = "banned_word"
	VerdictLinkCooldown    Verdict = "link_cooldown"
)

const (
	FeaturePhotos = "photos"
	FeatureLinks  = "links"
)

type Decision struct {
	Verdict   Verdict
	Remaining time.Duration
	Feature   string
}

func (d Decision) Accepted() bool {
	return d.Verdict == VerdictAccept
}

func Accept() Decision {
	return Decision{Verdict: VerdictAccept}
}

type DeleteOutcome string

const (
	DeleteOK          DeleteOutcome = "deleted"
	DeleteBanned      DeleteOutcome = "banned"
	DeleteWrongOrigin DeleteOutcome = "wrong_origin"
	DeleteCooldown    DeleteOutcome = "cooldown"
	DeleteFailed      DeleteOutcome = "failed"
)

type DeleteResult struct {
	Outcome   DeleteOutcome
	Remaining time.Duration
	Err       error
}

type Timeout struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuditAction string

const (
	ActionPublish AuditAction = "publish"
	ActionDelete  AuditAction = "delete"
)

type AuditRecord struct {
	ID        int64       `json:"id"`
	Action    AuditAction `json:"action"`
	UserID    int64       `json:"user_id"`
	FirstName string      `json:"first_name"`
	Username  string      `json:"username"`
	Kind      Kind        `json:"kind"`
	Content   string      `json:"content"`
	PhotoID   string      `json:"photo_id"`
	MessageID int         `json:"message_id"`
	CreatedAt time.Time   `json:"created_at"`
}
