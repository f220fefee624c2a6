package knowledge

import (
	"strings"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/utils"
)

const fuzzyMinLength = 7

type term struct {
	text   string
	stem   bool
	phrase bool
}

// Matcher tests folded text against a keyword set. A trailing "*" marks a stem
// matched as a word prefix; plain terms also match their -s/-es plural; terms
// with spaces match as a contiguous phrase. Plain terms of at least seven
// letters tolerate one typo; stems never do, since a fuzzy prefix admits
// unrelated words (capacidad for capacit*).
type Matcher struct {
	terms []term
}

func NewMatcher(keywords ...string) *Matcher {
	m := &Matcher{terms: make([]term, 0, len(keywords))}
	for _, kw := range keywords {
		stem := strings.HasSuffix(kw, "*")
		words := utils.Words(utils.Fold(strings.TrimSuffix(kw, "*")))
		if len(words) == 0 {
			continue
		}
		m.terms = append(m.terms, term{
			text:   strings.Join(words, " "),
			stem:   stem,
			phrase: len(words) > 1,
		})
	}
	return m
}

// Input is text prepared once for matching against many keyword sets.
type Input struct {
	words  []string
	padded string
}

func Prepare(text string) Input {
	words := utils.Words(utils.Fold(text))
	return Input{words: words, padded: " " + strings.Join(words, " ") + " "}
}

func (in Input) Empty() bool {
	return len(in.words) == 0
}

func (m *Matcher) Match(in Input) bool {
	_, ok := m.First(in)
	return ok
}

// First returns the first keyword, in declaration order, that the input hits.
func (m *Matcher) First(in Input) (string, bool) {
	for _, t := range m.terms {
		if t.phrase {
			if strings.Contains(in.padded, " "+t.text+" ") {
				return t.text, true
			}
			continue
		}
		for _, w := range in.words {
			if t.matchWord(w) {
				return t.text, true
			}
		}
	}
	return "", false
}

func (t term) matchWord(w string) bool {
	if t.stem {
		return strings.HasPrefix(w, t.text)
	}
	if w == t.text || w == t.text+"s" || w == t.text+"es" {
		return true
	}
	return len([]rune(t.text)) >= fuzzyMinLength && utils.LevenshteinDistance(w, t.text) <= 1
}
