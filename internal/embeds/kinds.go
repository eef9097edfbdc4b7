package embeds

import (
	"fmt"
	"strings"

	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/models"
)

func (f *Formatter) UserCreated(uid string, d models.Doc) *discord.Payload {
	return f.embed("🆕 新規ユーザー登録", "新しいユーザーが登録されました。", ColorGreen, []discord.Field{
		inline("名前", d.StringOr(NotSet, "displayName")),
		inline("メール", d.StringOr(NotSet, "email")),
		block("UID", orUnknown(uid)),
	})
}

func (f *Formatter) ContactCreated(id string, d models.Doc) *discord.Payload {
	return f.embed("📮 新しいお問い合わせ", "お問い合わせフォームへの投稿がありました。", ColorBlurple, []discord.Field{
		inline("カテゴリー", d.StringOr(Uncategorized, "categoryName", "category")),
		inline("件名", d.StringOr(NotSet, "title", "subject")),
		inline("ユーザーID", d.StringOr(Unknown, "userId")),
		inline("メール", d.StringOr(NotSet, "userEmail", "email")),
		docIDField(id),
	})
}

func (f *Formatter) BulletinSubmitted(id string, d models.Doc) *discord.Payload {
	return f.embed("📰 掲示板投稿が承認待ち", "新しい掲示板投稿が承認待ちとして提出されました。", ColorYellow, bulletinFields(id, d))
}

// BulletinChanged is the update notice for a post that became pending or
// received a pin request. The pin wording wins when both happened.
func (f *Formatter) BulletinChanged(id string, d models.Doc, pinRequested bool) *discord.Payload {
	title := "📰 掲示板投稿が承認待ちに変更"
	description := "掲示板投稿の承認ステータスが pending になりました。"
	if pinRequested {
		title = "📌 掲示板のピン留め申請"
		description = "掲示板投稿にピン留めのリクエストが入りました。"
	}
	return f.embed(title, description, ColorOrange, bulletinFields(id, d))
}

func bulletinFields(id string, d models.Doc) []discord.Field {
	return []discord.Field{
		inline("タイトル", d.StringOr(Untitled, "title")),
		inline("カテゴリー", BulletinCategory(d)),
		inline("投稿者", d.StringOr(Anonymous, "authorName", "authorId")),
		docIDField(id),
	}
}

func (f *Formatter) MenuItemCreated(id string, d models.Doc) *discord.Payload {
	price := NotSet
	if yen, ok := d.Int("price"); ok {
		price = fmt.Sprintf("¥%d", yen)
	}

	return f.embed("🍱 新しいメニュー", "食堂メニューが追加されました。", ColorTeal, []discord.Field{
		inline("メニュー名", d.StringOr(NotSet, "name", "title")),
		inline("食堂", CafeteriaName(d.StringOr("", "cafeteriaId", "cafeteria"))),
		inline("価格", price),
		inline("カテゴリー", d.StringOr(Uncategorized, "category")),
		docIDField(id),
	})
}

func (f *Formatter) ReviewCreated(id string, d models.Doc) *discord.Payload {
	rating := NotSet
	if stars, ok := d.Int("rating"); ok && stars >= 0 && stars <= 5 {
		rating = fmt.Sprintf("%s%s (%d)", strings.Repeat("★", int(stars)), strings.Repeat("☆", 5-int(stars)), stars)
	}

	comment := NotSet
	if text, ok := d.String("comment"); ok {
		comment = discord.Truncate(text, ReviewCommentLimit)
	}

	return f.embed("⭐ 新しいレビュー", "食堂メニューにレビューが投稿されました。", ColorGold, []discord.Field{
		inline("メニュー", d.StringOr(NotSet, "menuItemName", "menuName", "menuItemId")),
		inline("食堂", CafeteriaName(d.StringOr("", "cafeteriaId", "cafeteria"))),
		inline("評価", rating),
		inline("投稿者", d.StringOr(Anonymous, "userName", "userId")),
		block("コメント", comment),
		docIDField(id),
	})
}

func (f *Formatter) ReportCreated(id string, d models.Doc) *discord.Payload {
	detail := NotSet
	if text, ok := d.String("detail"); ok {
		detail = discord.Truncate(text, ReportDetailLimit)
	} else if text, ok := d.String("description"); ok {
		detail = discord.Truncate(text, ReportDetailLimit)
	}

	return f.embed("🚨 新しい通報", "コンテンツが通報されました。確認してください。", ColorRed, []discord.Field{
		inline("対象", ReportTargetLabel(d.StringOr("", "targetType"))),
		inline("対象ID", d.StringOr(Unknown, "targetId")),
		inline("理由", d.StringOr(Uncategorized, "reason")),
		inline("通報者", d.StringOr(Anonymous, "reporterId", "userId")),
		block("詳細", detail),
		docIDField(id),
	})
}

func (f *Formatter) GlobalNotificationCreated(id string, d models.Doc) *discord.Payload {
	delivery := "配信"
	if active, ok := d.Bool("isActive"); ok && !active {
		delivery = "配信しない（isActive=false）"
	}

	body := NotSet
	if text, ok := d.String("body"); ok {
		body = discord.Truncate(text, ReportDetailLimit)
	}

	return f.embed("📢 全体通知が作成されました", "全ユーザー向けのお知らせが登録されました。", ColorGrey, []discord.Field{
		inline("タイトル", d.StringOr(Untitled, "title")),
		inline("種別", d.StringOr(models.NotificationTypeGeneral, "type")),
		inline("プッシュ通知", delivery),
		block("本文", body),
		docIDField(id),
	})
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
