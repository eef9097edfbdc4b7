package models

import (
	"strings"
	"time"
)

// EventKind identifies what a document event means for notifications.
type EventKind string

const (
	KindUserCreated                 EventKind = "user_created"
	KindContactCreated              EventKind = "contact_created"
	KindBulletinSubmitted           EventKind = "bulletin_submitted"
	KindBulletinStatusChanged       EventKind = "bulletin_status_changed"
	KindMenuItemCreated             EventKind = "menu_item_created"
	KindReviewCreated               EventKind = "review_created"
	KindReportCreated               EventKind = "report_created"
	KindGlobalNotificationCreated   EventKind = "global_notification_created"
	KindPersonalNotificationCreated EventKind = "personal_notification_created"
)

// Snapshot is one side of a document change.
type Snapshot struct {
	Name       string // full resource name: projects/p/databases/d/documents/<path>
	Data       Doc
	CreateTime time.Time
	UpdateTime time.Time
}

// ID returns the last path segment of the resource name.
func (s *Snapshot) ID() string {
	if s == nil {
		return ""
	}
	return lastSegment(s.Name)
}

// Exists reports whether the snapshot carries a document.
func (s *Snapshot) Exists() bool {
	return s != nil && (s.Name != "" || len(s.Data) > 0)
}

// DocumentEvent is a single Firestore trigger invocation. Before is nil for
// creations, After is nil for deletions.
type DocumentEvent struct {
	Trigger    string
	DocumentID string
	Before     *Snapshot
	After      *Snapshot
	UpdateMask []string
}

// Current returns the newest snapshot data, or nil when the document is gone.
func (e *DocumentEvent) Current() Doc {
	if e == nil || !e.After.Exists() {
		return nil
	}
	if e.After.Data == nil {
		return Doc{}
	}
	return e.After.Data
}

// Previous returns the prior snapshot data; an empty Doc when absent.
func (e *DocumentEvent) Previous() Doc {
	if e == nil || !e.Before.Exists() || e.Before.Data == nil {
		return Doc{}
	}
	return e.Before.Data
}

func lastSegment(name string) string {
	name = strings.TrimSuffix(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
