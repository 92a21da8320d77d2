// Package ranges implements the interval micro-language shared across the
// ICD: field lengths, allowed character sets and numeric field rules all
// reference it.
//
// A range is a comma-separated list of items. Each item is either a single
// value ("8") or an interval with an optional lower and upper bound
// ("5:20", "5:", ":20"). "..." may be used in place of ":". Values are
// decimal or hexadecimal integers ("0x1f"), single-character literals
// ("'x'") denoting the character's code point, or one of the symbolic
// control-character names listed in Symbolic.
package ranges

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Symbolic maps the supported symbolic character names to their code points.
// The ICD parser reuses it for delimiter properties such as "tab".
var Symbolic = map[string]int64{
	"cr":  13,
	"ff":  12,
	"lf":  10,
	"tab": 9,
	"vt":  11,
}

// SyntaxError reports a malformed range text.
type SyntaxError struct {
	Text    string
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed range %q: %s", e.Text, e.Message)
}

// Item is one inclusive interval. A nil bound means the interval is open in
// that direction.
type Item struct {
	Lower *int64
	Upper *int64
}

func (it Item) contains(v int64) bool {
	if it.Lower != nil && v < *it.Lower {
		return false
	}
	if it.Upper != nil && v > *it.Upper {
		return false
	}
	return true
}

// String renders the item in range syntax ("5", "5:20", "5:", ":20").
func (it Item) String() string {
	switch {
	case it.Lower == nil && it.Upper == nil:
		return ":"
	case it.Lower == nil:
		return ":" + strconv.FormatInt(*it.Upper, 10)
	case it.Upper == nil:
		return strconv.FormatInt(*it.Lower, 10) + ":"
	case *it.Lower == *it.Upper:
		return strconv.FormatInt(*it.Lower, 10)
	default:
		return strconv.FormatInt(*it.Lower, 10) + ":" + strconv.FormatInt(*it.Upper, 10)
	}
}

// Range is an immutable set of inclusive intervals. The zero value is
// unconstrained and accepts every value.
type Range struct {
	items []Item
}

// Parse builds a Range from text. Empty or blank text yields an
// unconstrained Range. Overlapping items are legal; membership is the union
// of all items.
func Parse(text string) (Range, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Range{}, nil
	}
	toks, err := lex(text)
	if err != nil {
		return Range{}, err
	}
	p := parser{text: text, toks: toks}
	items, err := p.parseItems()
	if err != nil {
		return Range{}, err
	}
	return Range{items: items}, nil
}

// Unconstrained reports whether the Range accepts every value.
func (r Range) Unconstrained() bool { return len(r.items) == 0 }

// Items returns a copy of the interval list in the order it was written.
func (r Range) Items() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Contains reports whether v falls inside any item. An unconstrained Range
// contains every value.
func (r Range) Contains(v int64) bool {
	if len(r.items) == 0 {
		return true
	}
	for _, it := range r.items {
		if it.contains(v) {
			return true
		}
	}
	return false
}

// String renders the Range back into range syntax, items in input order.
func (r Range) String() string {
	if len(r.items) == 0 {
		return ""
	}
	parts := make([]string, len(r.items))
	for i, it := range r.items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}

// ---- lexing ----

type tokKind int

const (
	tokValue tokKind = iota
	tokColon
	tokComma
)

type token struct {
	kind tokKind
	val  int64
	text string
}

func lex(text string) ([]token, error) {
	var toks []token
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		case c == ':':
			toks = append(toks, token{kind: tokColon, text: ":"})
			i++
		case strings.HasPrefix(string(runes[i:]), "..."):
			toks = append(toks, token{kind: tokColon, text: "..."})
			i += 3
		case c == '\'' || c == '"':
			if i+2 >= len(runes) || runes[i+2] != c {
				return nil, &SyntaxError{Text: text, Message: "character literal must hold exactly one character"}
			}
			toks = append(toks, token{kind: tokValue, val: int64(runes[i+1]), text: string(runes[i : i+3])})
			i += 3
		case c == '-' || (c >= '0' && c <= '9'):
			start := i
			if c == '-' {
				i++
			}
			for i < len(runes) && isNumRune(runes[i]) {
				i++
			}
			lit := string(runes[start:i])
			v, err := parseNumber(lit)
			if err != nil {
				return nil, &SyntaxError{Text: text, Message: fmt.Sprintf("number must be an integer but is %q", lit)}
			}
			toks = append(toks, token{kind: tokValue, val: v, text: lit})
		case isNameRune(c):
			start := i
			for i < len(runes) && isNameRune(runes[i]) {
				i++
			}
			name := strings.ToLower(string(runes[start:i]))
			v, ok := Symbolic[name]
			if !ok {
				return nil, &SyntaxError{Text: text, Message: fmt.Sprintf("symbolic name %q must be one of: %s", name, symbolicNames())}
			}
			toks = append(toks, token{kind: tokValue, val: v, text: name})
		default:
			return nil, &SyntaxError{Text: text, Message: fmt.Sprintf("unexpected character %q", string(c))}
		}
	}
	return toks, nil
}

func isNumRune(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == 'x' || c == 'X'
}

func isNameRune(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func parseNumber(lit string) (int64, error) {
	neg := strings.HasPrefix(lit, "-")
	body := strings.TrimPrefix(lit, "-")
	base := 10
	if strings.HasPrefix(strings.ToLower(body), "0x") {
		body = body[2:]
		base = 16
	}
	v, err := strconv.ParseInt(body, base, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}

func symbolicNames() string {
	names := make([]string, 0, len(Symbolic))
	for n := range Symbolic {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// ---- parsing ----

type parser struct {
	text string
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseItems() ([]Item, error) {
	var items []Item
	for {
		it, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
		t, ok := p.peek()
		if !ok {
			return items, nil
		}
		if t.kind != tokComma {
			return nil, &SyntaxError{Text: p.text, Message: fmt.Sprintf("expected comma but found %q", t.text)}
		}
		p.pos++
		if _, ok := p.peek(); !ok {
			return nil, &SyntaxError{Text: p.text, Message: "trailing comma"}
		}
	}
}

func (p *parser) parseItem() (Item, error) {
	var it Item
	t, ok := p.peek()
	if !ok || t.kind == tokComma {
		return it, &SyntaxError{Text: p.text, Message: "empty range item"}
	}
	if t.kind == tokValue {
		v := t.val
		it.Lower = &v
		p.pos++
		t, ok = p.peek()
		if !ok || t.kind == tokComma {
			// Single value, point interval.
			it.Upper = it.Lower
			return it, nil
		}
	}
	if t.kind != tokColon {
		return it, &SyntaxError{Text: p.text, Message: fmt.Sprintf("number must be followed by colon or comma but found %q", t.text)}
	}
	p.pos++
	t, ok = p.peek()
	if ok && t.kind == tokValue {
		v := t.val
		it.Upper = &v
		p.pos++
	}
	if it.Lower == nil && it.Upper == nil {
		return it, &SyntaxError{Text: p.text, Message: "colon must be preceded and/or followed by a number"}
	}
	if it.Lower != nil && it.Upper != nil && *it.Lower > *it.Upper {
		return it, &SyntaxError{Text: p.text, Message: fmt.Sprintf("lower bound %d must not exceed upper bound %d", *it.Lower, *it.Upper)}
	}
	return it, nil
}
