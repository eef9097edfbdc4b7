package menuimages

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"campus-notifier/internal/common/config"
)

type pattern struct {
	name string
	re   *regexp.Regexp
}

// Classifier maps an image file name to a canonical asset name using an
// ordered pattern list; the first match wins.
type Classifier struct {
	patterns []pattern
}

func NewClassifier(cfgs []config.PatternConfig) (*Classifier, error) {
	c := &Classifier{}
	for _, p := range cfgs {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %s: %w", p.Name, err)
		}
		c.patterns = append(c.patterns, pattern{name: p.Name, re: re})
	}
	return c, nil
}

// Classify matches the base name of rawURL's path.
func (c *Classifier) Classify(rawURL string) (string, bool) {
	file := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		file = u.Path
	}
	file = path.Base(file)

	for _, p := range c.patterns {
		if p.re.MatchString(file) {
			return p.name, true
		}
	}
	return "", false
}

// Names lists canonical names in pattern order.
func (c *Classifier) Names() []string {
	out := make([]string, len(c.patterns))
	for i, p := range c.patterns {
		out[i] = p.name
	}
	return out
}

// ExtractMenuImages parses an HTML page and returns the absolute URLs of
// every img whose src contains /menu/, resolved against pageURL, in document
// order without duplicates.
func ExtractMenuImages(pageURL string, body io.Reader) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]bool)
	var out []string
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if !strings.Contains(src, menuPathMarker) {
			return
		}
		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	})
	return out, nil
}
