package strings

import "testing"

func TestNormalizeNewlines(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"a\r\nb":     "a\nb",
		"a\rb\r\nc":  "a\nb\nc",
		"plain text": "plain text",
	}
	for input, want := range cases {
		if got := NormalizeNewlines(input); got != want {
			t.Fatalf("NormalizeNewlines(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTrimTrailingNewlines(t *testing.T) {
	if got := TrimTrailingNewlines("body\r\n\n"); got != "body" {
		t.Fatalf("expected body, got %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \t\n") {
		t.Fatal("expected whitespace to be blank")
	}
	if IsBlank(" x ") {
		t.Fatal("expected text not to be blank")
	}
}
