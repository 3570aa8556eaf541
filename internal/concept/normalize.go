package concept

import (
	"strings"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
)

// NormalizeKey maps display text to the canonical concept key: lowercased,
// trimmed, inner whitespace collapsed to single spaces.
func NormalizeKey(text string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	key = strings.Join(strings.Fields(key), " ")
	if key == "" {
		return "", models.ErrEmptyConceptKey
	}
	return key, nil
}
