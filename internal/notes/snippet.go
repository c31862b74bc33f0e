package notes

import (
	"encoding/binary"
	"html"
	"strings"
	"unicode/utf8"
)

// Markers placed around matched text before escaping.
const (
	markStart = "\x02"
	markEnd   = "\x03"
	ellipsis  = "…"
)

var markReplacer = strings.NewReplacer(markStart, "<mark>", markEnd, "</mark>")

// highlight escapes s for HTML and turns match markers into <mark> tags. Markers
// are the only markup that survives.
func highlight(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return markReplacer.Replace(html.EscapeString(s))
}

var markStripper = strings.NewReplacer(markStart, "", markEnd, "")

// excerpt cuts a window of about radius runes on each side of the first
// case-insensitive occurrence of needle in text and marks the occurrence. When
// needle is absent, the start of text is returned unmarked.
func excerpt(text, needle string, radius int) string {
	text = markStripper.Replace(text)
	start, end := indexFold(text, needle)
	if start < 0 {
		return truncateRunes(text, 2*radius)
	}

	from := start
	for n := 0; n < radius && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < radius && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(text[from:start])
	b.WriteString(markStart)
	b.WriteString(text[start:end])
	b.WriteString(markEnd)
	b.WriteString(text[end:to])
	if to < len(text) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// indexFold returns the byte range of the first case-insensitive occurrence of
// needle in s, or -1, -1.
func indexFold(s, needle string) (int, int) {
	if needle == "" {
		return -1, -1
	}
	n := utf8.RuneCountInString(needle)
	for i := range s {
		j := i
		for k := 0; k < n && j < len(s); k++ {
			_, size := utf8.DecodeRuneInString(s[j:])
			j += size
		}
		if strings.EqualFold(s[i:j], needle) {
			return i, j
		}
	}
	return -1, -1
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + ellipsis
		}
		n++
	}
	return s
}

// rankScore sums, over every phrase and column of a matchinfo 'pcx' blob, the
// share of the phrase's total hits that fall in this row. Malformed blobs score 0.
func rankScore(info []byte) float64 {
	const word = 4
	if len(info) < 2*word || len(info)%word != 0 {
		return 0
	}
	values := make([]uint32, len(info)/word)
	for i := range values {
		values[i] = binary.NativeEndian.Uint32(info[i*word:])
	}

	phrases, cols := int(values[0]), int(values[1])
	if len(values) != 2+3*phrases*cols {
		return 0
	}

	var score float64
	for p := 0; p < phrases; p++ {
		for c := 0; c < cols; c++ {
			base := 2 + 3*(p*cols+c)
			hitsRow, hitsAll := values[base], values[base+1]
			if hitsRow > 0 && hitsAll > 0 {
				score += float64(hitsRow) / float64(hitsAll)
			}
		}
	}
	return score
}
