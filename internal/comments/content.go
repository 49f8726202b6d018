package comments

import (
	"strings"
	"unicode/utf8"

	"github.com/agora-social/agora/internal/apperr"
)

// MaxContentLength is the longest comment body accepted, in characters.
const MaxContentLength = 5000

// NormalizeContent trims surrounding whitespace and checks the length bounds.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)
	if n == 0 {
		return "", apperr.Invalid("comment content is required")
	}
	if n > MaxContentLength {
		return "", apperr.Invalid("comment content exceeds %d characters", MaxContentLength)
	}
	return content, nil
}
