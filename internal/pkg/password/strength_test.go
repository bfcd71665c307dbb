package password

import "testing"

func TestStrengthEmpty(t *testing.T) {
	if got := Strength(""); got != 0 {
		t.Fatalf("empty password score = %d, want 0", got)
	}
	if label := Evaluate("").Label; label != LabelWeak {
		t.Fatalf("empty password label = %q, want %q", label, LabelWeak)
	}
}

func TestStrengthScores(t *testing.T) {
	cases := []struct {
		pw    string
		score int
		label string
	}{
		{"a", 10, LabelWeak},
		{"abc", 10, LabelWeak},
		{"12345678", 40, LabelFair},       // min length + digit
		{"abcdefgh", 35, LabelFair},       // min length + lower
		{"Abcdefg1", 65, LabelGood},       // min length + lower + upper + digit
		{"Abcdefg1!", 85, LabelStrong},    // adds symbol
		{"Abcdefg1!xyz", 100, LabelStrong}, // adds long length
	}
	for _, tc := range cases {
		r := Evaluate(tc.pw)
		if r.Score != tc.score {
			t.Errorf("Strength(%q) = %d, want %d", tc.pw, r.Score, tc.score)
		}
		if r.Label != tc.label {
			t.Errorf("Evaluate(%q).Label = %q, want %q", tc.pw, r.Label, tc.label)
		}
	}
}

// Adding a character class to a password never lowers its score.
func TestStrengthMonotonic(t *testing.T) {
	steps := []string{
		"aaaa",
		"aaaaaaaa",
		"aaaaaaaA",
		"aaaaaaA1",
		"aaaaaA1!",
		"aaaaaaaaaA1!",
	}
	prev := -1
	for _, pw := range steps {
		score := Strength(pw)
		if score < prev {
			t.Fatalf("Strength(%q) = %d dropped below previous %d", pw, score, prev)
		}
		prev = score
	}
}

func TestStrengthClamped(t *testing.T) {
	pw := "Aa1!Aa1!Aa1!Aa1!Aa1!Aa1!"
	if got := Strength(pw); got < 0 || got > 100 {
		t.Fatalf("Strength(%q) = %d, want within [0, 100]", pw, got)
	}
}
