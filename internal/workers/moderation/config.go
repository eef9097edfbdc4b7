// internal/workers/moderation/config.go
package moderation

type Config struct {
	// Texts of the personal notification written when a post is approved.
	// %s is replaced by the post title.
	ApprovedTitle    string
	ApprovedBodyTmpl string
}

func LoadConfig() *Config {
	return &Config{
		ApprovedTitle:    "掲示板投稿が承認されました",
		ApprovedBodyTmpl: "「%s」が承認され、掲示板に公開されました。",
	}
}
