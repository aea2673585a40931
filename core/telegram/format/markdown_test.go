package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		version int
		entity  string
		want    string
	}{
		{"v1 plain", "Falcons", MarkdownV1, "", "Falcons"},
		{"v1 specials", "snake_case *bold* `x` [a]", MarkdownV1, "", "snake\\_case \\*bold\\* \\`x\\` \\[a]"},
		{"v2 specials", "1.5 (kg)!", MarkdownV2, "", "1\\.5 \\(kg\\)\\!"},
		{"v2 dash", "8-12", MarkdownV2, "", "8\\-12"},
		{"v2 code", "a_b`c", MarkdownV2, EntityCode, "a_b\\`c"},
		{"v2 link", "x.y)z", MarkdownV2, EntityTextLink, "x.y\\)z"},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, tc.version, tc.entity)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestEscapeMarkdownUnknownVersion(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3, ""); err == nil {
		t.Fatal("expected error for version 3")
	}
}

func TestDeref(t *testing.T) {
	s := "Ivanov"
	if got := Deref(&s, "-"); got != "Ivanov" {
		t.Fatalf("got %q", got)
	}
	if got := Deref[string](nil, "-"); got != "-" {
		t.Fatalf("got %q", got)
	}
	n := 7
	if got := Deref(&n, 0); got != 7 {
		t.Fatalf("got %d", got)
	}
	if got := Deref[int](nil, -1); got != -1 {
		t.Fatalf("got %d", got)
	}
}
