package htmlutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements whose end (or, for br, whose presence) starts a new line.
var lineBreaks = map[atom.Atom]bool{
	atom.Br:  true,
	atom.P:   true,
	atom.Div: true,
	atom.Li:  true,
	atom.H1:  true,
	atom.H2:  true,
	atom.H3:  true,
	atom.H4:  true,
	atom.H5:  true,
	atom.H6:  true,
}

// StripTags turns story text written in the rich text editor into plain
// text. Block ends become line breaks; empty lines are dropped. Text that
// only looks like markup, such as "<3" or "5 > 3", is kept.
func StripTags(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tag := z.Token().DataAtom
			if (tag == atom.Script || tag == atom.Style) && tt == html.StartTagToken {
				skip++
			}
			if tag == atom.Br {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			tag := z.Token().DataAtom
			if (tag == atom.Script || tag == atom.Style) && skip > 0 {
				skip--
			}
			if lineBreaks[tag] && tag != atom.Br {
				b.WriteByte('\n')
			}
		}
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Summary is StripTags cut to at most max runes, at a word boundary when
// there is one, with an ellipsis marking the cut.
func Summary(s string, max int) string {
	s = StripTags(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:max-1])
	if i := strings.LastIndexAny(cut, " \n"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \n.,;:") + "…"
}
