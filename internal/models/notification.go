package models

import "time"

// Firestore collections touched by the triggers.
const (
	CollectionUsers               = "users"
	CollectionContactForms        = "contact_forms"
	CollectionBulletinPosts       = "bulletin_posts"
	CollectionMenuItems           = "menu_items"
	CollectionReviews             = "reviews"
	CollectionReports             = "reports"
	CollectionGlobalNotifications = "global_notifications"
	CollectionNotifications       = "notifications"
	CollectionUserTokens          = "user_tokens"
)

// Bulletin approval statuses.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
)

// Personal notification types written by the backend.
const (
	NotificationTypeBulletinApproved = "bulletin_approved"
	NotificationTypeGeneral          = "general"
)

// DeviceToken is an FCM registration token stored at user_tokens/{userId}.
type DeviceToken struct {
	UserID string `firestore:"-"`
	Token  string `firestore:"fcmToken"`
}

// PersonalNotification is a document in the notifications collection; its
// creation fans out to the owner's device.
type PersonalNotification struct {
	UserID    string    `firestore:"userId"`
	Title     string    `firestore:"title"`
	Body      string    `firestore:"body"`
	Type      string    `firestore:"type"`
	PostID    string    `firestore:"postId,omitempty"`
	CommentID string    `firestore:"commentId,omitempty"`
	ReplyID   string    `firestore:"replyId,omitempty"`
	IsRead    bool      `firestore:"isRead"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}
