package dispatcher

import (
	"strings"

	"github.com/theapemachine/a2a-go/pkg/a2a"
)

// contextWindow is how many characters on either side of an ambiguous term
// are inspected for disambiguating context, per spec §4.8.1.
const contextWindow = 100

// lexicon is one agent's weighted keyword table, built from its card's
// skills: tags and skill names/descriptions/examples all contribute terms,
// tags weighted higher since they're the card author's explicit intent
// signal.
type lexicon map[string]float64

func buildLexicon(card a2a.AgentCard) lexicon {
	lex := make(lexicon)
	add := func(term string, weight float64) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if lex[term] < weight {
			lex[term] = weight
		}
	}

	for _, skill := range card.Skills {
		add(skill.Name, 1.0)
		for _, tag := range skill.Tags {
			add(tag, 1.5)
		}
		for _, example := range skill.Examples {
			for _, word := range strings.Fields(example) {
				add(word, 0.25)
			}
		}
	}
	return lex
}

// ambiguousTerm maps a term that appears in more than one agent's lexicon to
// the context words that, found within contextWindow characters of it,
// disambiguate toward a specific agent.
type ambiguousTerm struct {
	term    string
	context map[string][]string // agent name -> disambiguating context words
}

// Scorer implements the keyword-weighted selection policy: spec §4.8.1.
type Scorer struct {
	lexicons  map[string]lexicon
	ambiguous []ambiguousTerm
}

// NewScorer builds per-agent lexicons from the current registry and derives
// the ambiguous-term table from terms shared by two or more agents.
func NewScorer(cards []a2a.AgentCard) *Scorer {
	s := &Scorer{lexicons: make(map[string]lexicon)}
	for _, card := range cards {
		s.lexicons[card.Name] = buildLexicon(card)
	}
	s.ambiguous = deriveAmbiguousTerms(s.lexicons)
	return s
}

// deriveAmbiguousTerms finds terms present in more than one lexicon and
// records every other term from each owning agent's lexicon as its
// disambiguating context.
func deriveAmbiguousTerms(lexicons map[string]lexicon) []ambiguousTerm {
	owners := make(map[string][]string)
	for agent, lex := range lexicons {
		for term := range lex {
			owners[term] = append(owners[term], agent)
		}
	}

	var out []ambiguousTerm
	for term, agents := range owners {
		if len(agents) < 2 {
			continue
		}
		at := ambiguousTerm{term: term, context: make(map[string][]string)}
		for _, agent := range agents {
			var words []string
			for other := range lexicons[agent] {
				if other != term {
					words = append(words, other)
				}
			}
			at.context[agent] = words
		}
		out = append(out, at)
	}
	return out
}

// Score implements the keyword scorer: sum lexicon-weight matches per
// agent, boost via ambiguous-term context windows, and report the winner
// with confidence = winner / (winner + runner-up), or 0.5 on a tie
// (including the no-signal case where every agent scores zero).
func (s *Scorer) Score(query string) (string, float64) {
	lower := strings.ToLower(query)
	scores := make(map[string]float64, len(s.lexicons))

	for agent, lex := range s.lexicons {
		for term, weight := range lex {
			if strings.Contains(lower, term) {
				scores[agent] += weight
			}
		}
	}

	for _, at := range s.ambiguous {
		idx := strings.Index(lower, at.term)
		if idx < 0 {
			continue
		}
		start := idx - contextWindow
		if start < 0 {
			start = 0
		}
		end := idx + len(at.term) + contextWindow
		if end > len(lower) {
			end = len(lower)
		}
		window := lower[start:end]

		for agent, words := range at.context {
			for _, w := range words {
				if strings.Contains(window, w) {
					scores[agent] += 0.5
					break
				}
			}
		}
	}

	var winner, runnerUp string
	var winnerScore, runnerUpScore float64
	for agent, score := range scores {
		if score > winnerScore {
			runnerUp, runnerUpScore = winner, winnerScore
			winner, winnerScore = agent, score
		} else if score > runnerUpScore {
			runnerUp, runnerUpScore = agent, score
		}
	}
	_ = runnerUp

	if winner == "" {
		return "", 0.5
	}
	if winnerScore+runnerUpScore == 0 {
		return winner, 0.5
	}
	return winner, winnerScore / (winnerScore + runnerUpScore)
}
