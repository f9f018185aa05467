package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"encoding/xml"

	"github.com/bvrtu/quakeconnect-data/internal/config"
)

const (
	rssTimeout    = 15 * time.Second
	maxSnippetLen = 500
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Date formats seen across the configured RSS feeds.
var pubDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04:05",
}

// Fetcher pulls and normalizes articles from RSS endpoints.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates an RSS fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: rssTimeout},
	}
}

// rssResponse is the minimal XML structure shared by the configured feeds.
type rssResponse struct {
	XMLName xml.Name  `xml:"rss"`
	Items   []rssItem `xml:"channel>item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Enclosure   struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

// Fetch pulls all items from one source. Articles keep their publish time
// zero when the feed date does not parse; the correlation engine skips the
// temporal check for those.
func (f *Fetcher) Fetch(ctx context.Context, src config.NewsSource) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; QuakeConnectBot/1.0)")
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", src.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name, err)
	}

	var rss rssResponse
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name, err)
	}

	articles := make([]Article, 0, len(rss.Items))
	for _, item := range rss.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		desc := strings.TrimSpace(htmlTagRe.ReplaceAllString(item.Description, " "))
		if len(desc) > maxSnippetLen {
			desc = desc[:maxSnippetLen]
		}

		articles = append(articles, Article{
			Title:       strings.TrimSpace(item.Title),
			URL:         link,
			Source:      src.Name,
			PublishedAt: parsePubDate(item.PubDate),
			Content:     desc,
			ImageURL:    strings.TrimSpace(item.Enclosure.URL),
		})
	}
	return articles, nil
}

func parsePubDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range pubDateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
