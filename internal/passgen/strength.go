package passgen

import (
	"github.com/nbutton23/zxcvbn-go"
)

// Score labels indexed by zxcvbn score.
var scoreLabels = [...]string{"very weak", "weak", "fair", "strong", "very strong"}

// Strength is a zxcvbn estimate of how hard a password is to guess.
type Strength struct {
	Score     int     // 0 (worst) to 4 (best)
	Entropy   float64 // bits
	CrackTime string  // human readable offline crack time
}

// Label returns a short description of the score.
func (s Strength) Label() string {
	if s.Score < 0 || s.Score >= len(scoreLabels) {
		return "unknown"
	}
	return scoreLabels[s.Score]
}

// Weak reports whether the password should trigger a warning.
func (s Strength) Weak() bool {
	return s.Score < 3
}

// Estimate rates password. userInputs (record name, username) are treated
// as known words that make a password easier to guess.
func Estimate(password string, userInputs ...string) Strength {
	m := zxcvbn.PasswordStrength(password, userInputs)
	return Strength{
		Score:     m.Score,
		Entropy:   m.Entropy,
		CrackTime: m.CrackTimeDisplay,
	}
}
