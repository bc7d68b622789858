package quickorder

import (
	"strings"
	"unicode"

	"github.com/cboy-pos/api/internal/pos"
)

// MatchStatus represents the status of a match operation
type MatchStatus int

const (
	Matched MatchStatus = iota
	Ambiguous
	Unmatched
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// MatchResult contains the result of a matching operation
type MatchResult struct {
	Status     MatchStatus
	Item       *pos.MenuItem  // when Matched
	Candidates []pos.MenuItem // when Ambiguous
}

// Matcher performs keyword-based menu item matching
type Matcher struct {
	items    []pos.MenuItem
	names    []string
	keywords [][]string // pre-tokenized keywords per item
}

const (
	variantWeight = 5
	regularWeight = 1
)

// variantKeywords set one item apart from its siblings ("iced tea" and
// "hot tea"). A variant in the input must appear in the item.
var variantKeywords = map[string]bool{
	"small":   true,
	"regular": true,
	"large":   true,
	"iced":    true,
	"hot":     true,
	"single":  true,
	"double":  true,
	"spicy":   true,
	"vegan":   true,
}

// New creates a Matcher over items. Keywords come from each item's name,
// id and category.
func New(items []pos.MenuItem) *Matcher {
	m := &Matcher{
		items:    items,
		names:    make([]string, len(items)),
		keywords: make([][]string, len(items)),
	}
	for i, item := range items {
		m.names[i] = normalize(item.Name)
		seen := make(map[string]bool)
		for _, src := range []string{item.Name, item.ID, item.Category} {
			for _, kw := range strings.Fields(normalize(src)) {
				if !seen[kw] {
					seen[kw] = true
					m.keywords[i] = append(m.keywords[i], kw)
				}
			}
		}
	}
	return m
}

// Match finds the menu item text describes. An exact name wins outright;
// otherwise items are scored by shared keywords and the best one wins.
func (m *Matcher) Match(text string) MatchResult {
	normalized := normalize(text)
	if normalized == "" {
		return MatchResult{Status: Unmatched}
	}
	for i, name := range m.names {
		if name == normalized {
			return MatchResult{Status: Matched, Item: &m.items[i]}
		}
	}

	inputTokens := make(map[string]bool)
	inputVariants := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		inputTokens[tok] = true
		if variantKeywords[tok] {
			inputVariants[tok] = true
		}
	}

	type scoredItem struct {
		item  pos.MenuItem
		score int
	}
	var scored []scoredItem
	maxScore := 0

	for i, item := range m.items {
		keywords := m.keywords[i]
		if !hasAll(keywords, inputVariants) {
			continue
		}

		score := 0
		for _, kw := range keywords {
			if !inputTokens[kw] {
				continue
			}
			if variantKeywords[kw] {
				score += variantWeight
			} else {
				score += regularWeight
			}
		}
		if score > 0 {
			scored = append(scored, scoredItem{item: item, score: score})
			if score > maxScore {
				maxScore = score
			}
		}
	}

	var top []pos.MenuItem
	for _, s := range scored {
		if s.score == maxScore {
			top = append(top, s.item)
		}
	}

	switch len(top) {
	case 0:
		return MatchResult{Status: Unmatched}
	case 1:
		return MatchResult{Status: Matched, Item: &top[0]}
	default:
		return MatchResult{Status: Ambiguous, Candidates: top}
	}
}

func hasAll(keywords []string, want map[string]bool) bool {
	for w := range want {
		found := false
		for _, kw := range keywords {
			if kw == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// normalize lowercases s and replaces non-alphanumeric runs with one space.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
