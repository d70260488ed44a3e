// Package cards defines card content as handed out by a catalog and the
// sources the game engine draws from.
package cards

import "context"

// BlackCard is a prompt. Pick is the number of white cards an answer needs.
type BlackCard struct {
	Text string `json:"text"`
	Pick int    `json:"pick"`
	Pack string `json:"pack"`
}

// WhiteCard is an answer.
type WhiteCard struct {
	Text string `json:"text"`
	Pack string `json:"pack"`
}

// Source supplies card content on demand. Implementations may return fewer
// than n cards; an error means the source itself could not be reached.
// Texts present in exclude must not be returned, though callers tolerate
// sources that ignore the hint.
type Source interface {
	BlackCards(ctx context.Context, n int, exclude map[string]struct{}) ([]BlackCard, error)
	WhiteCards(ctx context.Context, n int, exclude map[string]struct{}) ([]WhiteCard, error)
}

// ExcludedTexts flattens an exclusion set for query builders.
func ExcludedTexts(exclude map[string]struct{}) []string {
	if len(exclude) == 0 {
		return nil
	}
	out := make([]string, 0, len(exclude))
	for text := range exclude {
		out = append(out, text)
	}
	return out
}
