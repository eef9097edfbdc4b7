// internal/cinotify/embed.go
package cinotify

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/embeds"
)

const (
	footerText    = "GitHub"
	footerIconURL = "https://github.githubassets.com/images/modules/logos_page/GitHub-Mark.png"

	// fieldValueLimit is Discord's hard cap on an embed field value.
	fieldValueLimit = 1024
)

// PushInfo is what a push embed is built from.
type PushInfo struct {
	Commit       Commit
	Branch       string
	URL          string
	CommitCount  int
	ChangedFiles []string
}

// NewPushInfo combines the event, the environment and git output.
func NewPushInfo(env Env, ev *Event, commit Commit, changed []string) PushInfo {
	return PushInfo{
		Commit:       commit,
		Branch:       ev.Branch(env),
		URL:          fmt.Sprintf("%s/%s/commit/%s", env.ServerURL, env.Repository, ev.SHA(env)),
		CommitCount:  ev.CommitCount(),
		ChangedFiles: changed,
	}
}

// BranchStyle picks the push title and color for a branch name.
func BranchStyle(branch string) (string, int) {
	switch {
	case branch == "main" || branch == "master":
		return "🚀 メインブランチにコミット", embeds.ColorGreen
	case branch == "develop":
		return "🚀 開発ブランチにコミット", embeds.ColorBlurple
	case strings.HasPrefix(branch, "feature/") || strings.HasPrefix(branch, "feat/"):
		return "✨ フィーチャーブランチにコミット", embeds.ColorYellow
	case strings.HasPrefix(branch, "fix/") || strings.HasPrefix(branch, "bugfix/"):
		return "🐛 バグ修正ブランチにコミット", embeds.ColorRed
	case strings.HasPrefix(branch, "hotfix/"):
		return "🔥 ホットフィックスにコミット", embeds.ColorRed
	default:
		return "🚀 新しいコミット", embeds.ColorGreen
	}
}

// PushPayload builds the embed for a push event.
func PushPayload(info PushInfo, now time.Time) *discord.Payload {
	fields := []discord.Field{
		{Name: "ブランチ", Value: "`" + info.Branch + "`", Inline: true},
		{Name: "作成者", Value: info.Commit.Author, Inline: true},
		{Name: "コミット", Value: fmt.Sprintf("[`%s`](%s)", info.Commit.ShortHash, info.URL), Inline: true},
	}
	if info.CommitCount > 1 {
		fields = append(fields, discord.Field{Name: "コミット数", Value: fmt.Sprintf("%d commits", info.CommitCount), Inline: true})
	}
	if len(info.ChangedFiles) > 0 {
		fields = append(fields, discord.Field{
			Name:  fmt.Sprintf("変更されたファイル (%d件)", len(info.ChangedFiles)),
			Value: ClampField(FormatChangedFiles(info.ChangedFiles)),
		})
	}

	title, color := BranchStyle(info.Branch)
	return payload(title, info.Commit.Subject, color, info.URL, info.Commit.Author, fields, now)
}

// FormatChangedFiles renders name-status lines as icon plus quoted path.
func FormatChangedFiles(lines []string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		status, path, ok := strings.Cut(line, "\t")
		if !ok {
			out[i] = "📝 `" + line + "`"
			continue
		}
		out[i] = statusIcon(status) + " `" + path + "`"
	}
	return strings.Join(out, "\n")
}

func statusIcon(status string) string {
	switch {
	case strings.HasPrefix(status, "A"):
		return "➕"
	case strings.HasPrefix(status, "D"):
		return "🗑️"
	case strings.HasPrefix(status, "M"):
		return "✏️"
	case strings.HasPrefix(status, "R"):
		return "🔄"
	default:
		return "📝"
	}
}

// ClampField keeps a field value within Discord's limit.
func ClampField(s string) string {
	if utf8.RuneCountInString(s) <= fieldValueLimit {
		return s
	}
	return discord.Truncate(s, fieldValueLimit-utf8.RuneCountInString(discord.Ellipsis))
}

// PullRequestStyle picks the title and color for a PR action.
func PullRequestStyle(action string, merged bool) (string, int) {
	switch action {
	case "opened":
		return "🆕 新しいPR", embeds.ColorBlurple
	case "closed":
		if merged {
			return "✅ PRマージ", embeds.ColorGreen
		}
		return "❌ PRクローズ", embeds.ColorRed
	case "synchronize":
		return "🔄 PR更新", embeds.ColorYellow
	case "reopened":
		return "🔓 PR再オープン", embeds.ColorBlurple
	default:
		return "📝 PR更新", embeds.ColorGrey
	}
}

// PullRequestPayload builds the embed for a pull_request event.
func PullRequestPayload(action string, pr *PullRequest, now time.Time) *discord.Payload {
	author := pr.User.Login
	fields := []discord.Field{
		{Name: "PR", Value: fmt.Sprintf("#%d", pr.Number), Inline: true},
		{Name: "作成者", Value: author, Inline: true},
		{Name: "ブランチ", Value: fmt.Sprintf("`%s` → `%s`", pr.Head.Ref, pr.Base.Ref)},
	}

	state := "⏳ オープン"
	switch {
	case pr.Merged:
		state = "✅ マージ済み"
	case action == "closed":
		state = "❌ クローズ済み"
	}
	fields = append(fields, discord.Field{Name: "状態", Value: state, Inline: true})

	if pr.ChangedFiles > 0 {
		fields = append(fields, discord.Field{
			Name:  "変更内容",
			Value: fmt.Sprintf("➕ %d additions\n➖ %d deletions\n📝 %d files changed", pr.Additions, pr.Deletions, pr.ChangedFiles),
		})
	}

	title, color := PullRequestStyle(action, pr.Merged)
	return payload(title, pr.Title, color, pr.HTMLURL, author, fields, now)
}

func payload(title, description string, color int, url, author string, fields []discord.Field, now time.Time) *discord.Payload {
	return discord.NewPayload(discord.Embed{
		Title:       title,
		Description: discord.Truncate(description, embeds.DescriptionLimit),
		Color:       color,
		URL:         url,
		Fields:      fields,
		Timestamp:   embeds.Timestamp(now),
		Author: &discord.Author{
			Name:    author,
			IconURL: fmt.Sprintf("https://github.com/%s.png", author),
		},
		Footer: &discord.Footer{Text: footerText, IconURL: footerIconURL},
	})
}
