package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ne-nine9/arbitr/internal/dates"
)

var fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestLoader(opts ...Option) *Loader {
	opts = append([]Option{WithNow(func() time.Time { return fixedNow })}, opts...)
	return NewLoader(nil, opts...)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Sabotage Watch</title>
<item>
  <title>Rail cables cut near Berlin</title>
  <link>https://news.example/rail</link>
  <description><![CDATA[<p>Saboteurs cut <b>signal</b> cables.</p><script>x()</script>]]></description>
  <pubDate>Tue, 05 Mar 2024 10:00:00 +0000</pubDate>
</item>
<item>
  <title>Undated item</title>
  <link>https://news.example/undated</link>
</item>
</channel></rss>`

func TestLoad_JSONArray(t *testing.T) {
	path := writeFile(t, "listing.json", `[
  {"title": "Cable cut", "url": "https://a.example/1", "snippet": "Baltic cable", "date_text": "2 days ago"},
  {"title": "Fire", "link": "https://a.example/2", "description": "Depot fire", "date_text": "whenever"},
  {"snippet": "no title or url"}
]`)

	articles, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "https://a.example/1", articles[0].URL)
	assert.Equal(t, "2024-06-08", articles[0].Date.String())
	assert.Equal(t, "search", articles[0].DateSource)
	assert.Equal(t, path, articles[0].Source)

	assert.Equal(t, "https://a.example/2", articles[1].URL)
	assert.Equal(t, "Depot fire", articles[1].Snippet)
	assert.True(t, articles[1].Date.IsZero())
	assert.Equal(t, "whenever", articles[1].DateText)
}

func TestLoad_ResultsDocumentKeepsDates(t *testing.T) {
	path := writeFile(t, "results.json", `{"articles": [
  {"id": "01HX", "title": "Stored", "url": "https://a.example/s", "date": "2023-11-02", "date_source": "body", "full_content": "Body text"},
  {"title": "Null date", "url": "https://a.example/n", "date": null}
], "total_count": 2}`)

	articles, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "01HX", articles[0].ID)
	assert.Equal(t, "2023-11-02", articles[0].Date.String())
	assert.Equal(t, "body", articles[0].DateSource)
	assert.Equal(t, "Body text", articles[0].FullContent)
	assert.True(t, articles[1].Date.IsZero())
}

func TestLoad_JSONL(t *testing.T) {
	path := writeFile(t, "listing.jsonl", `{"title": "One", "url": "https://a.example/1", "date_text": "March 3, 2024"}

{"title": "Two", "url": "https://a.example/2"}
`)

	articles, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "2024-03-03", articles[0].Date.String())
	assert.Equal(t, "Two", articles[1].Title)
}

func TestLoad_JSONLReportsLine(t *testing.T) {
	path := writeFile(t, "bad.jsonl", "{\"title\": \"ok\", \"url\": \"u\"}\n{broken\n")

	_, err := newTestLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoad_Feed(t *testing.T) {
	path := writeFile(t, "feed.xml", rssFeed)

	articles, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "Rail cables cut near Berlin", first.Title)
	assert.Equal(t, "https://news.example/rail", first.URL)
	assert.Equal(t, "Saboteurs cut signal cables.", first.Snippet)
	assert.Equal(t, "2024-03-05", first.Date.String())
	assert.Equal(t, "meta", first.DateSource)
	assert.Equal(t, "Sabotage Watch", first.Source)

	assert.True(t, articles[1].Date.IsZero())
	assert.Empty(t, articles[1].DateSource)
}

func TestLoad_URLList(t *testing.T) {
	path := writeFile(t, "urls.txt", "# seeds\nhttps://a.example/1\n\n  https://a.example/2  \nhttps://a.example/1\n")

	articles, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "https://a.example/2", articles[1].URL)
}

func TestLoad_RemoteFeed(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprint(w, rssFeed)
	}))
	defer server.Close()

	loader := newTestLoader(WithHTTPClient(server.Client(), "arbitr-test"))
	articles, err := loader.Load(context.Background(), server.URL+"/feed")
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, "arbitr-test", gotUA)
}

func TestLoad_RemoteStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestLoader(WithHTTPClient(server.Client(), "t")).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestLoad_ForcedFormat(t *testing.T) {
	path := writeFile(t, "listing.dat", `[{"title": "x", "url": "https://a.example/x"}]`)

	articles, err := newTestLoader(WithFormat(FormatJSON)).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, articles, 1)

	_, err = newTestLoader(WithFormat(Format("csv"))).Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := newTestLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadAll_OrderDedupeAndIDs(t *testing.T) {
	a := writeFile(t, "a.json", `[{"title": "A1", "url": "https://a.example/1"}, {"title": "A2", "url": "https://a.example/2"}]`)
	b := writeFile(t, "b.txt", "https://a.example/2\nhttps://a.example/3\n")

	articles, err := newTestLoader().LoadAll(context.Background(), []string{a, b})
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.Equal(t, "A1", articles[0].Title)
	assert.Equal(t, "A2", articles[1].Title, "first occurrence wins")
	assert.Equal(t, "https://a.example/3", articles[2].URL)
	for _, art := range articles {
		assert.NotEmpty(t, art.ID)
	}
}

func TestLoadAll_PropagatesError(t *testing.T) {
	good := writeFile(t, "a.txt", "https://a.example/1\n")

	_, err := newTestLoader().LoadAll(context.Background(), []string{good, "/nonexistent/listing.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/listing.json")
}

func TestDetect(t *testing.T) {
	tests := []struct {
		source string
		data   string
		want   Format
	}{
		{"x.json", "", FormatJSON},
		{"x.ndjson", "", FormatJSONL},
		{"x.rss", "", FormatFeed},
		{"x.txt", "<rss>", FormatURLs},
		{"x", "  <?xml version='1.0'?>", FormatFeed},
		{"x", "[{}]", FormatJSON},
		{"x", "{\"articles\": []}", FormatJSON},
		{"x", "{\"a\":1}\n{\"a\":2}", FormatJSONL},
		{"x", "https://a.example", FormatURLs},
		{"https://host/feed.json", "<rss>", FormatFeed},
	}

	for _, tt := range tests {
		t.Run(tt.source+"/"+string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, detect(tt.source, []byte(tt.data)))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "auto": FormatAuto, "RSS": FormatFeed, "ndjson": FormatJSONL, "txt": FormatURLs} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "a b", stripHTML("  a\n b "))
	assert.Equal(t, "Tom & Jerry", stripHTML("Tom &amp; Jerry"))
	assert.Equal(t, "one two", stripHTML("<p>one</p><p>two</p><style>p{}</style>"))
}

func TestNewLoaderUsesNormalizer(t *testing.T) {
	n := dates.NewNormalizer(dates.WithWindow(dates.Window{From: 2010, To: 2012}))
	path := writeFile(t, "l.json", `[{"title": "old", "url": "u", "date_text": "March 3, 2024"}]`)

	articles, err := NewLoader(n).Load(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, articles[0].Date.IsZero())
}
