// Package discord posts embed payloads to Discord webhooks.
package discord

import "unicode/utf8"

// Ellipsis is appended to text cut by Truncate.
const Ellipsis = "…"

// Payload is the JSON body of a webhook POST.
type Payload struct {
	Embeds []Embed `json:"embeds"`
}

type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Color       int     `json:"color"`
	URL         string  `json:"url,omitempty"`
	Fields      []Field `json:"fields"`
	Timestamp   string  `json:"timestamp"`
	Author      *Author `json:"author,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Author struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// NewPayload wraps a single embed.
func NewPayload(e Embed) *Payload {
	if e.Fields == nil {
		e.Fields = []Field{}
	}
	return &Payload{Embeds: []Embed{e}}
}

// Truncate cuts s to limit runes and appends Ellipsis, only when s is longer
// than limit.
func Truncate(s string, limit int) string {
	if limit < 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}
