// Package tokenizer estimates how many context tokens a dump will consume.
package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultEncodingName = "cl100k_base"

	// fallbackCharactersPerToken approximates token counts when the encoding
	// cannot be initialized, matching the common four-characters-per-token
	// rule of thumb.
	fallbackCharactersPerToken = 4
)

// Estimator counts tokens for text content.
type Estimator interface {
	CountString(input string) int
}

// NewEstimator returns a tiktoken-backed estimator, or a character-based
// approximation when the encoding data is unavailable (for example offline).
func NewEstimator() Estimator {
	encoding, encodingError := tiktoken.GetEncoding(defaultEncodingName)
	if encodingError != nil || encoding == nil {
		return characterEstimator{}
	}
	return tiktokenEstimator{encoding: encoding}
}

type tiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

func (estimator tiktokenEstimator) CountString(input string) int {
	return len(estimator.encoding.Encode(input, nil, nil))
}

type characterEstimator struct{}

func (estimator characterEstimator) CountString(input string) int {
	return len(input) / fallbackCharactersPerToken
}
