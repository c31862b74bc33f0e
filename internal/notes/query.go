package notes

import (
	"strings"
	"unicode"
)

// Boolean operators recognized in ranked queries. Only the uppercase forms are
// operators; lowercase "and" is an ordinary word.
const (
	opAnd = "AND"
	opOr  = "OR"
	opNot = "NOT"
)

// MatchExpression rewrites free text into a full-text MATCH expression that the
// store cannot reject. Words are reduced to letters and digits and lowercased,
// double-quoted spans become phrases, a trailing '*' makes a prefix query, and
// AND/OR/NOT are kept only where they have an operand on both sides. Returns ""
// when no searchable word remains.
func MatchExpression(query string) string {
	var items []string
	for _, raw := range splitQuery(query) {
		if raw.phrase {
			if item := phraseItem(tokenize(raw.text), raw.prefix); item != "" {
				items = append(items, item)
			}
			continue
		}
		switch raw.text {
		case opAnd, opOr, opNot:
			items = append(items, raw.text)
			continue
		}
		terms := tokenize(strings.TrimSuffix(raw.text, "*"))
		prefix := strings.HasSuffix(raw.text, "*")
		switch len(terms) {
		case 0:
		case 1:
			item := terms[0]
			if prefix {
				item += "*"
			}
			items = append(items, item)
		default:
			// Punctuation inside a word ("blue-sky") keeps its parts adjacent.
			items = append(items, phraseItem(terms, prefix))
		}
	}
	return joinOperands(items)
}

type rawToken struct {
	text   string
	phrase bool
	prefix bool
}

// splitQuery splits on whitespace outside double quotes. An unterminated quote
// runs to the end of the input.
func splitQuery(query string) []rawToken {
	var tokens []rawToken
	var b strings.Builder
	inPhrase := false

	flush := func(phrase bool) {
		text := b.String()
		b.Reset()
		if text == "" {
			return
		}
		tokens = append(tokens, rawToken{text: text, phrase: phrase})
	}

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inPhrase {
				flush(true)
				if i+1 < len(runes) && runes[i+1] == '*' && len(tokens) > 0 {
					tokens[len(tokens)-1].prefix = true
					i++
				}
			} else {
				flush(false)
			}
			inPhrase = !inPhrase
		case unicode.IsSpace(r) && !inPhrase:
			flush(false)
		default:
			b.WriteRune(r)
		}
	}
	flush(inPhrase)
	return tokens
}

func phraseItem(terms []string, prefix bool) string {
	if len(terms) == 0 {
		return ""
	}
	item := strings.Join(terms, " ")
	if prefix {
		item += "*"
	}
	return `"` + item + `"`
}

// joinOperands drops operators that lack an operand on either side and collapses
// runs of operators to the last one.
func joinOperands(items []string) string {
	var out []string
	pending := ""
	for _, item := range items {
		if isOperator(item) {
			if len(out) > 0 {
				pending = item
			}
			continue
		}
		if pending != "" {
			out = append(out, pending)
			pending = ""
		}
		out = append(out, item)
	}
	return strings.Join(out, " ")
}

func isOperator(item string) bool {
	return item == opAnd || item == opOr || item == opNot
}

// tokenize lowercases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
