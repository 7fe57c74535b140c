// Package article fetches web pages and extracts their readable text.
package article

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/voxpress/voxpress/internal/config"
	"github.com/voxpress/voxpress/internal/logging"
)

// ErrTooLittleText means the page parsed but yielded less content than an
// article plausibly has, usually a paywall or a consent interstitial.
var ErrTooLittleText = errors.New("extracted text too short to be an article")

// contentSelectors is tried in order; the first match wins. Ordered from
// most specific article containers to generic content wrappers.
var contentSelectors = []string{
	"article",
	"main",
	".main-content",
	"#main",
	".post-content",
	".entry-content",
	"#content",
	".story-content",
}

// Article is the extracted page content.
type Article struct {
	URL   string
	Title string
	Text  string
}

type Fetcher struct {
	client       *http.Client
	userAgent    string
	minTextChars int
}

func NewFetcher(cfg config.ArticleConfig) *Fetcher {
	return &Fetcher{
		client:       &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		userAgent:    cfg.UserAgent,
		minTextChars: cfg.MinTextChars,
	}
}

// Fetch downloads rawURL and extracts title and body text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid article url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", u.String(), resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u.String(), err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := extractText(doc)
	if len([]rune(text)) < f.minTextChars {
		return nil, fmt.Errorf("%w: %d chars from %s", ErrTooLittleText, len([]rune(text)), u.String())
	}

	logging.Infof("fetched %q: %d chars", title, len([]rune(text)))
	return &Article{URL: u.String(), Title: title, Text: text}, nil
}

// extractText walks the selector chain and joins the paragraphs of the first
// container that has any. Pages with no recognizable container fall back to
// every paragraph in the body.
func extractText(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		if text := paragraphsOf(container); text != "" {
			return text
		}
	}
	return paragraphsOf(doc.Find("body"))
}

func paragraphsOf(sel *goquery.Selection) string {
	var parts []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n")
}
