// internal/workers/moderation/models.go
package moderation

import "campus-notifier/internal/models"

// Trigger names.
const (
	TaskUserCreated       = "notify-user-created"
	TaskContactCreated    = "notify-contact-created"
	TaskBulletinSubmitted = "notify-bulletin-submitted"
	TaskBulletinUpdated   = "notify-bulletin-updated"
	TaskMenuItemCreated   = "notify-menu-item-created"
	TaskReviewCreated     = "notify-review-created"
	TaskReportCreated     = "notify-report-created"
)

// createKinds maps creation triggers to the event they represent.
var createKinds = map[string]models.EventKind{
	TaskUserCreated:       models.KindUserCreated,
	TaskContactCreated:    models.KindContactCreated,
	TaskBulletinSubmitted: models.KindBulletinSubmitted,
	TaskMenuItemCreated:   models.KindMenuItemCreated,
	TaskReviewCreated:     models.KindReviewCreated,
	TaskReportCreated:     models.KindReportCreated,
}

// Transition is the outcome of the bulletin update predicate. Each edge is
// independent.
type Transition struct {
	BecamePending      bool
	BecamePinRequested bool
	BecameApproved     bool
}

// Notify reports whether the moderator embed should go out.
func (t Transition) Notify() bool {
	return t.BecamePending || t.BecamePinRequested
}

func (t Transition) Any() bool {
	return t.Notify() || t.BecameApproved
}

// EvaluateBulletinUpdate compares two snapshots of a bulletin post. Only a
// real boolean true counts as a pin request.
func EvaluateBulletinUpdate(before, after models.Doc) Transition {
	prevStatus := before.StringOr("", "approvalStatus")
	currStatus := after.StringOr("", "approvalStatus")
	prevPin := before.Flag("pinRequested")
	currPin := after.Flag("pinRequested")

	return Transition{
		BecamePending:      prevStatus != models.ApprovalPending && currStatus == models.ApprovalPending,
		BecamePinRequested: !prevPin && currPin,
		BecameApproved:     prevStatus != models.ApprovalApproved && currStatus == models.ApprovalApproved,
	}
}

// IsSubmittedPending is the creation predicate for bulletin posts: status
// defaults to pending when absent.
func IsSubmittedPending(data models.Doc) bool {
	return data.StringOr(models.ApprovalPending, "approvalStatus") == models.ApprovalPending
}
