// Package ingest turns source input (a URL or raw text) into cleaned,
// bounded plain text ready for topic segmentation.
package ingest

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	serrors "github.com/scenescribe/scenescribe/internal/errors"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// CleanHTMLToText strips scripts, styles, and markup from an HTML document,
// decodes entities, collapses whitespace, and caps the result at maxChars.
func CleanHTMLToText(doc string, maxChars int) string {
	out := scriptRe.ReplaceAllString(doc, "")
	out = styleRe.ReplaceAllString(out, "")
	out = tagRe.ReplaceAllString(out, " ")
	out = html.UnescapeString(out)
	out = strings.TrimSpace(spaceRe.ReplaceAllString(out, " "))
	return truncate(out, maxChars)
}

// NormalizeText collapses whitespace in raw text input and caps it at maxChars.
func NormalizeText(raw string, maxChars int) string {
	if raw == "" {
		return ""
	}
	return truncate(strings.TrimSpace(spaceRe.ReplaceAllString(raw, " ")), maxChars)
}

func truncate(s string, maxChars int) string {
	if maxChars > 0 && len(s) > maxChars {
		return s[:maxChars]
	}
	return s
}

// Fetcher downloads articles over HTTP and extracts their text content.
type Fetcher struct {
	client   *http.Client
	maxChars int
	logger   zerolog.Logger
}

// NewFetcher creates an article fetcher with the given timeout and
// extraction cap.
func NewFetcher(timeout time.Duration, maxChars int, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxChars: maxChars,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// ExtractArticle fetches the URL and returns its cleaned text.
func (f *Fetcher) ExtractArticle(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: bad url: %v", serrors.ErrInvalidInput, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: fetch returned status %d", serrors.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	text := CleanHTMLToText(string(body), f.maxChars)
	f.logger.Debug().Str("url", url).Int("chars", len(text)).Msg("article extracted")
	return text, nil
}
