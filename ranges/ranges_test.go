package ranges_test

import (
	"strings"
	"testing"

	"github.com/rowlint/rowlint/ranges"
)

func mustParse(t *testing.T, text string) ranges.Range {
	t.Helper()
	r, err := ranges.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return r
}

func TestParseContains(t *testing.T) {
	cases := []struct {
		text   string
		accept []int64
		reject []int64
	}{
		{"5:20, 8", []int64{5, 8, 13, 20}, []int64{4, 21}},
		{"5:20, 8, 30:", []int64{5, 20, 8, 30, 1000}, []int64{4, 29}},
		{"1", []int64{1}, []int64{0, 2}},
		{":10", []int64{-5, 0, 10}, []int64{11}},
		{"10:", []int64{10, 99}, []int64{9}},
		{"-5:-1", []int64{-5, -1}, []int64{0, -6}},
		{"0x1f", []int64{31}, []int64{30, 32}},
		{"1...3", []int64{1, 2, 3}, []int64{0, 4}},
		{"'a':'c'", []int64{97, 98, 99}, []int64{96, 100}},
		{"tab", []int64{9}, []int64{8, 10}},
	}
	for _, c := range cases {
		r := mustParse(t, c.text)
		for _, v := range c.accept {
			if !r.Contains(v) {
				t.Errorf("Parse(%q).Contains(%d) = false, want true", c.text, v)
			}
		}
		for _, v := range c.reject {
			if r.Contains(v) {
				t.Errorf("Parse(%q).Contains(%d) = true, want false", c.text, v)
			}
		}
	}
}

func TestParseEmptyIsUnconstrained(t *testing.T) {
	for _, text := range []string{"", "   "} {
		r := mustParse(t, text)
		if !r.Unconstrained() {
			t.Fatalf("Parse(%q) should be unconstrained", text)
		}
		for _, v := range []int64{-1000, 0, 1000} {
			if !r.Contains(v) {
				t.Errorf("unconstrained range must contain %d", v)
			}
		}
	}
}

func TestParseOverlappingItemsAccepted(t *testing.T) {
	r, err := ranges.Parse("1:10, 5:20")
	if err != nil {
		t.Fatalf("overlapping items must not be rejected: %v", err)
	}
	for _, v := range []int64{1, 7, 20} {
		if !r.Contains(v) {
			t.Errorf("Contains(%d) = false, want true", v)
		}
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := []string{
		"abc",   // unknown symbolic name
		"1:2:3", // too many bounds
		"5:1",   // lower above upper
		",1",    // leading comma
		"1,",    // trailing comma
		"1,,2",  // empty item
		":",     // no bounds at all
		"'ab'",  // multi-character literal
		"1 2",   // missing separator
		"2.5",   // not an integer
	}
	for _, text := range cases {
		if _, err := ranges.Parse(text); err == nil {
			t.Errorf("Parse(%q) should fail", text)
		} else if _, ok := err.(*ranges.SyntaxError); !ok {
			t.Errorf("Parse(%q) error should be *ranges.SyntaxError, got %T", text, err)
		}
	}
}

func TestRangeString(t *testing.T) {
	cases := map[string]string{
		"5:20, 8":  "5:20, 8",
		" 1 : 2 ":  "1:2",
		"3":        "3",
		"10:":      "10:",
		":10":      ":10",
		"1...3":    "1:3",
	}
	for in, want := range cases {
		if got := mustParse(t, in).String(); got != want {
			t.Errorf("Parse(%q).String() = %q, want %q", in, got, want)
		}
	}
}

func TestItemsPreserveInputOrder(t *testing.T) {
	items := mustParse(t, "30:, 5:20, 8").Items()
	if len(items) != 3 {
		t.Fatalf("items = %v, want 3", items)
	}
	if items[0].Lower == nil || *items[0].Lower != 30 || items[0].Upper != nil {
		t.Errorf("items[0] = %+v, want the 30: item first", items[0])
	}
	if items[2].Lower == nil || *items[2].Lower != 8 {
		t.Errorf("items[2] = %+v, want the single-value 8 item last", items[2])
	}
}

func TestSyntaxErrorMessageNamesToken(t *testing.T) {
	_, err := ranges.Parse("moo")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "moo") {
		t.Errorf("error %q should name the offending token", err)
	}
}
