package business

import (
	"regexp"
	"strings"

	messageerrors "github.com/Conte777/NewsFlow/services/crawler-service/internal/domain/message/errors"
)

// keywordMatcher reports whether text contains any of the keywords, ignoring case
type keywordMatcher struct {
	re    *regexp.Regexp
	terms []string
}

func newKeywordMatcher(keywords []string) (*keywordMatcher, error) {
	terms := make([]string, 0, len(keywords))
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		terms = append(terms, k)
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	if len(terms) == 0 {
		return nil, messageerrors.ErrNoKeywords
	}

	return &keywordMatcher{
		re:    regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`),
		terms: terms,
	}, nil
}

func (m *keywordMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}
