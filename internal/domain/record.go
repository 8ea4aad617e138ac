package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies one of the four record collections. The string value
// doubles as the local-storage key prefix.
type Kind string

const (
	KindTraining Kind = "trainingSessions"
	KindMatch    Kind = "matches"
	KindSchedule Kind = "scheduleSessions"
	KindGoal     Kind = "goals"
)

// Record is implemented by every persisted record type (via Meta).
// Stores and managers manipulate records only through this interface.
type Record interface {
	RecordID() string
	SetRecordID(id string)
	Owner() string
	SetOwner(owner string)
	StampCreated(t time.Time)
	Touch(t time.Time)
	ModifiedAt() time.Time
}

// Meta carries the fields shared by all record kinds. Embed with
// `bson:",inline"` so the fields stay flat in the stored document.
type Meta struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	OwnerID   string    `bson:"ownerId" json:"ownerId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (m *Meta) RecordID() string        { return m.ID }
func (m *Meta) SetRecordID(id string)   { m.ID = id }
func (m *Meta) Owner() string           { return m.OwnerID }
func (m *Meta) SetOwner(owner string)   { m.OwnerID = owner }

// StampCreated sets CreatedAt once. Later calls are no-ops so an update
// can never alter the creation time.
func (m *Meta) StampCreated(t time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = t
	}
}

// Touch records a mutation.
func (m *Meta) Touch(t time.Time) { m.UpdatedAt = t }

// ModifiedAt reports the last mutation time.
func (m *Meta) ModifiedAt() time.Time { return m.UpdatedAt }

// NewLocalID builds a client-side id for the local persistence path:
// a kind prefix, the current time and a random suffix, e.g.
// "goal_1717680000000_1a2b3c4d".
func NewLocalID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), suffix)
}

// DateLayout is the calendar-date format used on all records. Streaks,
// schedule views and the overdue filter all compare dates in this form.
const DateLayout = "2006-01-02"
