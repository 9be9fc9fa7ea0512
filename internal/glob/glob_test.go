package glob

import "testing"

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "anything", true},
		{"*", "", true},
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"a*c", "abc", true},
		{"a*c", "ac", true},
		{"a*c", "abbbbc", true},
		{"a*c", "abcd", false},
		{"*foo*", "xxfooyy", true},
		{"*foo*", "xxbaryy", false},
		{"h?llo", "hello", false}, // only '*' is a wildcard per §4.E
		{"user:*", "user:123", true},
		{"user:*", "account:123", false},
		{"**", "anything", true},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.s); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.s, got, c.want)
		}
	}
}
