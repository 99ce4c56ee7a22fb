package textnorm

import (
	"strings"
)

// stopWords mirrors the english stopword list the intent models were trained with.
var stopWords = map[string]bool{
	"i": true, "me": true, "my": true, "myself": true, "we": true, "our": true,
	"ours": true, "ourselves": true, "you": true, "your": true, "yours": true,
	"yourself": true, "he": true, "him": true, "his": true, "himself": true,
	"she": true, "her": true, "hers": true, "herself": true, "it": true,
	"its": true, "itself": true, "they": true, "them": true, "their": true,
	"theirs": true, "themselves": true, "what": true, "which": true, "who": true,
	"whom": true, "this": true, "that": true, "these": true, "those": true,
	"am": true, "is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"having": true, "do": true, "does": true, "did": true, "doing": true,
	"a": true, "an": true, "the": true, "and": true, "but": true, "if": true,
	"or": true, "because": true, "as": true, "until": true, "while": true,
	"of": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "against": true, "between": true, "into": true,
	"through": true, "during": true, "before": true, "after": true,
	"above": true, "below": true, "to": true, "from": true, "up": true,
	"down": true, "in": true, "out": true, "on": true, "off": true,
	"over": true, "under": true, "again": true, "further": true, "then": true,
	"once": true, "here": true, "there": true, "when": true, "where": true,
	"why": true, "how": true, "all": true, "any": true, "both": true,
	"each": true, "few": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "no": true, "nor": true, "not": true,
	"only": true, "own": true, "same": true, "so": true, "than": true,
	"too": true, "very": true, "s": true, "t": true, "can": true,
	"will": true, "just": true, "don": true, "should": true, "now": true,
}

var irregularNouns = map[string]string{
	"men":      "man",
	"women":    "woman",
	"children": "child",
	"feet":     "foot",
	"teeth":    "tooth",
	"mice":     "mouse",
	"geese":    "goose",
}

// Normalize lowercases, strips everything outside [a-z] and whitespace,
// collapses whitespace, drops stopwords and reduces each token to its
// dictionary lemma. Pure and idempotent; empty input yields empty output.
func Normalize(text string) string {
	text = strings.ToLower(text)

	text = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, text)

	words := strings.Fields(text)

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if stopWords[word] {
			continue
		}
		// The lemma can itself be a stopword ("wills" → "will"); keeping it
		// would break idempotence, since the next pass drops it.
		lemma := lemmatize(word)
		if stopWords[lemma] {
			continue
		}
		tokens = append(tokens, lemma)
	}

	return strings.Join(tokens, " ")
}

// lemmatize reduces plural nouns to singular form. The rules are ordered from
// most to least specific and are stable under reapplication.
func lemmatize(word string) string {
	if lemma, ok := irregularNouns[word]; ok {
		return lemma
	}

	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses"):
		return word[:len(word)-2]
	case len(word) > 4 && (strings.HasSuffix(word, "shes") || strings.HasSuffix(word, "ches") || strings.HasSuffix(word, "xes")):
		return word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s") &&
		!strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us") && !strings.HasSuffix(word, "is"):
		return word[:len(word)-1]
	}

	return word
}
