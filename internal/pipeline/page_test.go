package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storyHTML = `<!doctype html>
<html><head>
<meta property="og:title" content="Cables cut">
<meta name="date" content="not a date">
<meta property="article:published_time" content="2024-03-05T10:00:00Z">
<script>var x = "March 1, 2020";</script>
</head><body>
<header>Site header January 1, 2021</header>
<nav><a href="/">Home</a> <a href="/world">World</a></nav>
<article class="story">
<h1>Cables cut</h1>
<p>Published: March 5, 2024</p>
<p>Saboteurs cut   railway cables
near Berlin.</p>
<style>.x{}</style>
</article>
<time datetime="2024-03-06">6 March</time>
<footer>Footer text</footer>
</body></html>`

func TestParsePage_MetaDatesInPrecedenceOrder(t *testing.T) {
	page, err := ParsePage(storyHTML)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-03-05T10:00:00Z", "not a date", "2024-03-06"}, page.MetaDates)
}

func TestParsePage_MainText(t *testing.T) {
	page, err := ParsePage(storyHTML)
	require.NoError(t, err)

	assert.Equal(t, "Cables cut\nPublished: March 5, 2024\nSaboteurs cut railway cables near Berlin.", page.Text)
	assert.NotContains(t, page.Text, "Site header")
	assert.NotContains(t, page.Text, "Footer")
	assert.NotContains(t, page.Text, "March 1, 2020")
}

func TestParsePage_SkipsNoisyAndLinkHeavyCandidates(t *testing.T) {
	long := strings.Repeat("Investigators examined the damaged substation. ", 30)
	html := `<html><body>
<div class="article-content share-widget">` + long + long + `</div>
<div class="post-content"><a>a</a><a>b</a><a>c</a></div>
<div class="article-body"><p>` + long + `</p></div>
</body></html>`

	page, err := ParsePage(html)
	require.NoError(t, err)

	assert.Equal(t, strings.TrimSpace(long), page.Text)
}

func TestParsePage_FallsBackToBody(t *testing.T) {
	page, err := ParsePage(`<html><body><p>Short note.</p><p>Second line.</p></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Short note.\nSecond line.", page.Text)
	assert.Empty(t, page.MetaDates)
}

func TestParsePage_FallbackPrefersMainRegion(t *testing.T) {
	page, err := ParsePage(`<html><body><div>Outside</div><div class="main-content"><p>Inside the main region of the page.</p></div></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Inside the main region of the page.", page.Text)
}

func TestBlockTextCollapsesWhitespace(t *testing.T) {
	page, err := ParsePage("<html><body><div>  a \n\t b </div><br><span>c</span><span>d</span></body></html>")
	require.NoError(t, err)

	assert.Equal(t, "a b\ncd", page.Text)
}
