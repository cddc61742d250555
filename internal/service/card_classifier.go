package service

import (
	"regexp"
	"strings"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
)

// Free/half card wording found in counter notes. Matching is case-insensitive
// and tolerant of extra whitespace.
var (
	freeCardNotes = regexp.MustCompile(`(?i)full\s*free\s*card|100\s*%\s*discount`)
	halfCardNotes = regexp.MustCompile(`(?i)half\s*free\s*card|50\s*%\s*discount`)
)

// cardRule is one step of the classification chain. It reports the card type
// and whether it applies to the transaction.
type cardRule struct {
	name  string
	apply func(models.Transaction) (models.CardType, bool)
}

// CardClassifier resolves the discount card type of a class payment. The
// rules form an ordered precedence chain: the explicit tag beats the notes
// heuristic, which beats the zero-amount heuristic; anything else is a full
// card. Classification is total: every transaction gets a card type.
type CardClassifier struct {
	rules []cardRule
}

// NewCardClassifier builds the classifier with the standard rule chain.
func NewCardClassifier() *CardClassifier {
	return &CardClassifier{
		rules: []cardRule{
			{name: "explicit-tag", apply: classifyByExplicitTag},
			{name: "notes", apply: classifyByNotes},
			{name: "zero-amount", apply: classifyByZeroAmount},
		},
	}
}

// Classify returns the card type for a transaction. Intended for rows with
// payment type class_payment; other rows are not card-classified by callers.
func (c *CardClassifier) Classify(tx models.Transaction) models.CardType {
	for _, rule := range c.rules {
		if cardType, ok := rule.apply(tx); ok {
			return cardType
		}
	}
	return models.CardTypeFull
}

// classifyByExplicitTag honours the recorded card type. Only "free" and
// "half" are meaningful; any other non-empty value is a full card.
func classifyByExplicitTag(tx models.Transaction) (models.CardType, bool) {
	tag := models.CardType(strings.TrimSpace(string(tx.CardType)))
	if tag == "" {
		return "", false
	}
	switch tag {
	case models.CardTypeFree, models.CardTypeHalf:
		return tag, true
	default:
		return models.CardTypeFull, true
	}
}

// classifyByNotes falls back to the free-text note the cashier wrote. The
// free-card pattern is checked first so "full free card" never matches half.
func classifyByNotes(tx models.Transaction) (models.CardType, bool) {
	if tx.Notes == "" {
		return "", false
	}
	if freeCardNotes.MatchString(tx.Notes) {
		return models.CardTypeFree, true
	}
	if halfCardNotes.MatchString(tx.Notes) {
		return models.CardTypeHalf, true
	}
	return "", false
}

// classifyByZeroAmount treats a zero collected amount as a free card.
func classifyByZeroAmount(tx models.Transaction) (models.CardType, bool) {
	if tx.Amount.IsZero() {
		return models.CardTypeFree, true
	}
	return "", false
}
