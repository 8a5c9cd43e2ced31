package pipeline

import "spamsniffer/internal/domain"

// SpamThreshold is fixed; a score equal to it is not spam.
const SpamThreshold = 0.5

const (
	promotionalDescription = "This email looks like a promotional offer."
	legitimateDescription  = "This email seems legitimate."
)

// Decide applies the binary policy to a spam probability. Category and
// description depend only on the decision, never on the score's magnitude.
// TODO: richer categories need a multi-class model; keep two labels until then.
func Decide(spamScore float64) (isSpam bool, spamType domain.SpamType, description string) {
	if spamScore > SpamThreshold {
		return true, domain.SpamTypePromotional, promotionalDescription
	}
	return false, domain.SpamTypeLegitimate, legitimateDescription
}
