// Package password scores password strength the same way the dashboard's
// sign-up form does, so server-side rejection matches what the user saw.
package password

import "unicode"

// Strength labels.
const (
	LabelWeak   = "weak"
	LabelFair   = "fair"
	LabelGood   = "good"
	LabelStrong = "strong"
)

// Report describes which criteria a password meets alongside its score.
type Report struct {
	Score      int    `json:"score"`
	Label      string `json:"label"`
	MinLength  bool   `json:"min_length"`
	Lowercase  bool   `json:"lowercase"`
	Uppercase  bool   `json:"uppercase"`
	Digit      bool   `json:"digit"`
	Symbol     bool   `json:"symbol"`
	LongLength bool   `json:"long_length"`
}

// Strength returns a score in [0, 100]. Each satisfied criterion adds a
// fixed amount, so adding a missing character class never lowers the score.
func Strength(pw string) int {
	return Evaluate(pw).Score
}

// Evaluate computes the full criteria report for a password.
func Evaluate(pw string) Report {
	r := Report{}
	if pw == "" {
		r.Label = LabelWeak
		return r
	}

	for _, c := range pw {
		switch {
		case unicode.IsLower(c):
			r.Lowercase = true
		case unicode.IsUpper(c):
			r.Uppercase = true
		case unicode.IsDigit(c):
			r.Digit = true
		default:
			r.Symbol = true
		}
	}
	length := len([]rune(pw))
	r.MinLength = length >= 8
	r.LongLength = length >= 12

	score := 0
	if r.MinLength {
		score += 25
	}
	if r.Lowercase {
		score += 10
	}
	if r.Uppercase {
		score += 15
	}
	if r.Digit {
		score += 15
	}
	if r.Symbol {
		score += 20
	}
	if r.LongLength {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	r.Score = score
	r.Label = labelFor(score)
	return r
}

func labelFor(score int) string {
	switch {
	case score >= 85:
		return LabelStrong
	case score >= 60:
		return LabelGood
	case score >= 30:
		return LabelFair
	default:
		return LabelWeak
	}
}
