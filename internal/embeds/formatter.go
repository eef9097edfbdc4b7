// Package embeds turns document events into Discord embed payloads. It does
// no I/O; the only ambient input is the injected clock.
package embeds

import (
	"time"

	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/models"
)

// Embed colors.
const (
	ColorGreen   = 0x57F287
	ColorBlurple = 0x5865F2
	ColorYellow  = 0xFEE75C
	ColorOrange  = 0xFAA81A
	ColorTeal    = 0x1ABC9C
	ColorGold    = 0xF1C40F
	ColorRed     = 0xED4245
	ColorGrey    = 0x2F3136
)

// Placeholders used instead of omitting a field.
const (
	NotSet        = "（未設定）"
	Untitled      = "（無題）"
	Uncategorized = "未分類"
	Anonymous     = "匿名"
	Unknown       = "unknown"
)

// Free text budgets, in characters.
const (
	ReviewCommentLimit = 100
	ReportDetailLimit  = 150
	DescriptionLimit   = 2000
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Event is the formatter input.
type Event struct {
	Kind       models.EventKind
	DocumentID string
	Data       models.Doc
	// PinRequested selects the pin title for KindBulletinStatusChanged.
	PinRequested bool
}

type Formatter struct {
	now func() time.Time
}

// New returns a Formatter stamping embeds with now(); nil means time.Now.
func New(now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{now: now}
}

// Format dispatches on the event kind. The second result is the webhook kind
// the payload belongs to; ok is false for kinds that have no embed.
func (f *Formatter) Format(ev Event) (payload *discord.Payload, kind discord.Kind, ok bool) {
	data := ev.Data
	if data == nil {
		data = models.Doc{}
	}

	switch ev.Kind {
	case models.KindUserCreated:
		return f.UserCreated(ev.DocumentID, data), discord.KindUsers, true
	case models.KindContactCreated:
		return f.ContactCreated(ev.DocumentID, data), discord.KindContacts, true
	case models.KindBulletinSubmitted:
		return f.BulletinSubmitted(ev.DocumentID, data), discord.KindBulletin, true
	case models.KindBulletinStatusChanged:
		return f.BulletinChanged(ev.DocumentID, data, ev.PinRequested), discord.KindBulletin, true
	case models.KindMenuItemCreated:
		return f.MenuItemCreated(ev.DocumentID, data), discord.KindMenu, true
	case models.KindReviewCreated:
		return f.ReviewCreated(ev.DocumentID, data), discord.KindReview, true
	case models.KindReportCreated:
		return f.ReportCreated(ev.DocumentID, data), discord.KindReport, true
	case models.KindGlobalNotificationCreated:
		return f.GlobalNotificationCreated(ev.DocumentID, data), discord.KindNotifications, true
	default:
		return nil, "", false
	}
}

func (f *Formatter) embed(title, description string, color int, fields []discord.Field) *discord.Payload {
	return discord.NewPayload(discord.Embed{
		Title:       title,
		Description: description,
		Color:       color,
		Fields:      fields,
		Timestamp:   Timestamp(f.now()),
	})
}

// Timestamp renders t the way Discord embeds expect, in UTC with milliseconds.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func inline(name, value string) discord.Field {
	return discord.Field{Name: name, Value: value, Inline: true}
}

func block(name, value string) discord.Field {
	return discord.Field{Name: name, Value: value, Inline: false}
}

func docIDField(id string) discord.Field {
	return block("ドキュメントID", orUnknown(id))
}
