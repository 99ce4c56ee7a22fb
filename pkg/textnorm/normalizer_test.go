package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases and strips punctuation",
			in:   "My LAPTOP is Broken!!!",
			want: "laptop broken",
		},
		{
			name: "strips digits",
			in:   "order 482910 refund",
			want: "order refund",
		},
		{
			name: "collapses whitespace",
			in:   "  refund   \t my  order \n please ",
			want: "refund order please",
		},
		{
			name: "drops stopwords",
			in:   "i want a refund for my laptop",
			want: "want refund laptop",
		},
		{
			name: "lemmatizes plurals",
			in:   "batteries in both laptops and mice",
			want: "battery laptop mouse",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "only stopwords",
			in:   "it is what it is",
			want: "",
		},
		{
			name: "drops tokens whose lemma is a stopword",
			in:   "the wills of men",
			want: "man",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"I want a refund for my headphones, order 778823!",
		"The TVs and routers stopped working",
		"hello there, is the phone available?",
		"classes buses crises",
		"the wills of men",
		"wills cans dons",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}
