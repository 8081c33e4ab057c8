package usecase

import (
	"encoding/json"
	"regexp"
)

// Models are asked for bare JSON but tend to wrap it in prose or code
// fences, so the first brace-delimited object is cut out before
// unmarshalling.
var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

type parseOutcome int

const (
	answerParsed parseOutcome = iota
	extractionFailed
	schemaInvalid
)

// parsedAnswer keeps the fields nullable: the prompt demands explicit
// nulls when the model cannot identify an animal.
type parsedAnswer struct {
	CommonName     *string `json:"commonName"`
	ScientificName *string `json:"scientificName"`
}

func (a parsedAnswer) complete() bool {
	return a.CommonName != nil && *a.CommonName != "" &&
		a.ScientificName != nil && *a.ScientificName != ""
}

// extractAnswer pulls a species answer out of free-form model text.
// The three outcomes stay distinct here even though callers currently
// treat extractionFailed and schemaInvalid the same as a null answer.
func extractAnswer(text string) (parsedAnswer, parseOutcome) {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return parsedAnswer{}, extractionFailed
	}

	var answer parsedAnswer
	if err := json.Unmarshal([]byte(match), &answer); err != nil {
		return parsedAnswer{}, schemaInvalid
	}
	return answer, answerParsed
}
