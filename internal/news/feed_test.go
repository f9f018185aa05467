package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bvrtu/quakeconnect-data/internal/config"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Son Dakika</title>
    <item>
      <title> Izmir'de 4.9 büyüklüğünde deprem </title>
      <link>https://example.com/haber/1</link>
      <pubDate>Thu, 20 Aug 2026 15:30:00 +0300</pubDate>
      <description><![CDATA[<p>AFAD <b>duyurdu</b>.</p>]]></description>
      <enclosure url="https://example.com/img/1.jpg" type="image/jpeg"/>
    </item>
    <item>
      <title>Linki olmayan haber</title>
      <link></link>
      <pubDate>Thu, 20 Aug 2026 16:00:00 +0300</pubDate>
    </item>
    <item>
      <title>Tarihi bozuk haber</title>
      <link>https://example.com/haber/2</link>
      <pubDate>yakında</pubDate>
    </item>
  </channel>
</rss>`

func TestFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "QuakeConnectBot")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	src := config.NewsSource{Name: "Son Dakika", URL: srv.URL}
	articles, err := NewFetcher().Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, articles, 2) // the item without a link is dropped

	first := articles[0]
	assert.Equal(t, "Izmir'de 4.9 büyüklüğünde deprem", first.Title)
	assert.Equal(t, "https://example.com/haber/1", first.URL)
	assert.Equal(t, "Son Dakika", first.Source)
	assert.Equal(t, "https://example.com/img/1.jpg", first.ImageURL)
	assert.Equal(t, "AFAD  duyurdu .", first.Content) // html stripped
	assert.Equal(t, time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC), first.PublishedAt)

	// Unparseable dates come back zero, they are not an error.
	assert.True(t, articles[1].PublishedAt.IsZero())
}

func TestFetcherFetchTruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("a", 2*maxSnippetLen)
	body := `<?xml version="1.0"?><rss version="2.0"><channel><item>
		<title>t</title><link>https://example.com/x</link>
		<description>` + long + `</description>
	</item></channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	articles, err := NewFetcher().Fetch(context.Background(), config.NewsSource{Name: "x", URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Len(t, articles[0].Content, maxSnippetLen)
}

func TestFetcherFetchErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewFetcher().Fetch(context.Background(), config.NewsSource{Name: "down", URL: srv.URL})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 503")
	})

	t.Run("malformed xml", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not xml at all"))
		}))
		defer srv.Close()

		_, err := NewFetcher().Fetch(context.Background(), config.NewsSource{Name: "bad", URL: srv.URL})
		require.Error(t, err)
	})
}

func TestParsePubDate(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"Thu, 20 Aug 2026 14:30:00 +0000", time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
		{"2026-08-20T14:30:00Z", time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
		{"20.08.2026 14:30:00", time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"belirsiz", time.Time{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parsePubDate(tc.raw), tc.raw)
	}
}
