package htmlutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain text", input: "A kite learns to fly.", expected: "A kite learns to fly."},
		{name: "paragraphs", input: "<p>Once upon a time</p><p>the end</p>", expected: "Once upon a time\nthe end"},
		{name: "line breaks", input: "Line one<br>Line two<BR />Line three", expected: "Line one\nLine two\nLine three"},
		{name: "inline formatting", input: "<p>The <strong>brave</strong> <em>little</em> kite</p>", expected: "The brave little kite"},
		{name: "entities", input: "Mia &amp; Leo&#39;s &quot;big&quot; day&nbsp;out", expected: `Mia & Leo's "big" day out`},
		{name: "lists", input: "<ul><li>Wind</li><li>String</li></ul>", expected: "Wind\nString"},
		{name: "text that looks like markup", input: "Mia <3 her kite. Is 5 > 3? Yes!", expected: "Mia <3 her kite. Is 5 > 3? Yes!"},
		{name: "escaped angle brackets", input: "<p>1 &lt; 2</p>", expected: "1 < 2"},
		{name: "script dropped", input: "<p>Hi</p><script>alert(1)</script>", expected: "Hi"},
		{name: "collapses whitespace", input: "<p>  lots   of\t space </p>\n\n<p></p>", expected: "lots of space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, StripTags(tt.input))
		})
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Short story.", Summary("<p>Short story.</p>", 100))
	assert.Equal(t, "Short story.", Summary("Short story.", 0))
	assert.Equal(t, "Mia <3 her kite. Is 5 > 3? Yes!", Summary("Mia <3 her kite. Is 5 > 3? Yes!", 4000))

	long := "<p>" + strings.Repeat("The kite flew higher and higher. ", 20) + "</p>"
	got := Summary(long, 50)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 50)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.True(t, strings.HasPrefix(got, "The kite flew higher"))
	assert.NotContains(t, got, "<p>")
}
