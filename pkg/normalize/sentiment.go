package normalize

import (
	"strings"
	"unicode"
)

// lexicon maps lower-case words to a polarity in [-1, 1].
var lexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.6, "awesome": 1.0,
	"wonderful": 1.0, "fantastic": 0.4, "love": 0.5, "loved": 0.7, "lovely": 0.5,
	"like": 0.2, "nice": 0.6, "happy": 0.8, "glad": 0.5, "best": 1.0, "better": 0.5,
	"beautiful": 0.85, "brilliant": 0.9, "cool": 0.35, "fun": 0.3, "interesting": 0.5,
	"helpful": 0.4, "useful": 0.3, "free": 0.4, "thanks": 0.2, "thank": 0.2,
	"win": 0.8, "hope": 0.3, "hopeful": 0.4, "safe": 0.5, "proud": 0.8, "right": 0.29,
	"bad": -0.7, "worse": -0.4, "worst": -1.0, "terrible": -1.0, "awful": -1.0,
	"horrible": -1.0, "hate": -0.8, "hated": -0.9, "sad": -0.5, "angry": -0.5,
	"poor": -0.4, "wrong": -0.5, "ugly": -0.7, "stupid": -0.8, "dumb": -0.375,
	"evil": -1.0, "disgusting": -1.0, "boring": -1.0, "annoying": -0.8, "fail": -0.5,
	"failed": -0.5, "crisis": -0.5, "disaster": -0.6, "dangerous": -0.6, "fear": -0.4,
	"scary": -0.5, "broken": -0.4, "toxic": -0.6, "abuse": -0.6, "war": -0.5,
	"sick": -0.7, "crazy": -0.6, "lost": -0.3, "problem": -0.2, "pathetic": -1.0,
}

// intensifiers scale the polarity of the next sentiment word.
var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.2, "extremely": 1.5, "so": 1.2, "incredibly": 1.5,
	"super": 1.3, "quite": 1.1, "slightly": 0.5, "somewhat": 0.7, "totally": 1.4,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true, "neither": true,
	"nor": true, "cannot": true, "isn't": true, "wasn't": true, "don't": true,
	"doesn't": true, "didn't": true, "won't": true, "can't": true, "aren't": true,
}

// negationFactor is applied to a sentiment word preceded by a negation.
const negationFactor = -0.5

// Polarity scores text in [-1, 1] as the mean polarity of its sentiment
// words. A negation within the two preceding words flips and dampens a
// word's score; an intensifier directly before it scales the score. Text
// without sentiment words scores 0.
func Polarity(text string) float64 {
	words := tokenize(text)

	sum, n := 0.0, 0
	for i, w := range words {
		p, ok := lexicon[w]
		if !ok {
			continue
		}
		if i > 0 {
			if f, ok := intensifiers[words[i-1]]; ok {
				p *= f
			}
		}
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if negations[words[j]] {
				p *= negationFactor
				break
			}
		}
		sum += clamp(p)
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp(sum / float64(n))
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for i, f := range fields {
		fields[i] = strings.Trim(f, "'")
	}
	return fields
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
