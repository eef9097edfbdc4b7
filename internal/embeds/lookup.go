package embeds

import "campus-notifier/internal/models"

var cafeterias = map[string]string{
	"tsudanuma":     "津田沼キャンパス食堂",
	"td":            "津田沼キャンパス食堂",
	"shinnarashino": "新習志野キャンパス食堂",
	"narashino_1":   "新習志野キャンパス 1F 食堂",
	"sd1":           "新習志野キャンパス 1F 食堂",
	"narashino_2":   "新習志野キャンパス 2F 食堂",
	"sd2":           "新習志野キャンパス 2F 食堂",
}

var reportTargets = map[string]string{
	"post":    "掲示板投稿",
	"comment": "コメント",
	"reply":   "返信",
	"review":  "レビュー",
	"user":    "ユーザー",
	"menu":    "メニュー",
}

var bulletinCategories = map[string]string{
	"event":   "イベント",
	"club":    "サークル",
	"lecture": "講義",
	"job":     "就職",
	"notice":  "お知らせ",
	"other":   "その他",
}

// CafeteriaName maps a cafeteria id to its display name. Unknown ids are
// shown as-is; an empty id is NotSet.
func CafeteriaName(id string) string {
	if name, ok := cafeterias[id]; ok {
		return name
	}
	if id == "" {
		return NotSet
	}
	return id
}

// ReportTargetLabel maps a report target type to its label.
func ReportTargetLabel(targetType string) string {
	if label, ok := reportTargets[targetType]; ok {
		return label
	}
	if targetType == "" {
		return Unknown
	}
	return targetType
}

// BulletinCategory resolves a post category: category.name, then
// categoryName, then the name registered for category.id, then the raw id.
// A plain string category is treated as an id.
func BulletinCategory(d models.Doc) string {
	if name, ok := d.Map("category").String("name"); ok {
		return name
	}
	if name, ok := d.String("categoryName"); ok {
		return name
	}

	id, ok := d.Map("category").String("id")
	if !ok {
		id, ok = d.String("category")
	}
	if !ok {
		return Uncategorized
	}
	if name, found := bulletinCategories[id]; found {
		return name
	}
	return id
}
