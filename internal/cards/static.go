package cards

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Static serves cards from a fixed in-memory deck in random order.
type Static struct {
	mu    sync.Mutex
	rng   *rand.Rand
	black []BlackCard
	white []WhiteCard
}

func NewStatic(black []BlackCard, white []WhiteCard, rng *rand.Rand) *Static {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Static{
		rng:   rng,
		black: append([]BlackCard(nil), black...),
		white: append([]WhiteCard(nil), white...),
	}
}

func (s *Static) BlackCards(_ context.Context, n int, exclude map[string]struct{}) ([]BlackCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pool := make([]BlackCard, 0, len(s.black))
	for _, card := range s.black {
		if _, used := exclude[card.Text]; !used {
			pool = append(pool, card)
		}
	}
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return limit(pool, n), nil
}

func (s *Static) WhiteCards(_ context.Context, n int, exclude map[string]struct{}) ([]WhiteCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pool := make([]WhiteCard, 0, len(s.white))
	for _, card := range s.white {
		if _, used := exclude[card.Text]; !used {
			pool = append(pool, card)
		}
	}
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return limit(pool, n), nil
}

func limit[T any](pool []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(pool) > n {
		return pool[:n]
	}
	return pool
}

// FallbackDeck is served when no catalog is reachable.
func FallbackDeck() ([]BlackCard, []WhiteCard) {
	black := []BlackCard{
		{Text: "Why can't I sleep at night?", Pick: 1, Pack: "Fallback Pack"},
		{Text: "What's that smell?", Pick: 1, Pack: "Fallback Pack"},
		{Text: "I got 99 problems but _____ ain't one.", Pick: 1, Pack: "Fallback Pack"},
		{Text: "What ended my last relationship?", Pick: 1, Pack: "Fallback Pack"},
		{Text: "What's the next Happy Meal toy?", Pick: 1, Pack: "Fallback Pack"},
		{Text: "What's my secret power?", Pick: 1, Pack: "Fallback Pack"},
		{Text: "What broke the build this time?", Pick: 1, Pack: "Developer Pack"},
		{Text: "The code review only said one thing: _____.", Pick: 1, Pack: "Developer Pack"},
		{Text: "Step 1: _____. Step 2: _____. Step 3: Profit.", Pick: 2, Pack: "Fallback Pack"},
		{Text: "_____ + _____ = _____", Pick: 3, Pack: "Fallback Pack"},
	}
	white := []WhiteCard{
		{Text: "A disappointing birthday party", Pack: "Fallback Pack"},
		{Text: "Robots", Pack: "Fallback Pack"},
		{Text: "Poor life choices", Pack: "Fallback Pack"},
		{Text: "Existential dread", Pack: "Fallback Pack"},
		{Text: "The heart of a child", Pack: "Fallback Pack"},
		{Text: "An endless supply of snacks", Pack: "Fallback Pack"},
		{Text: "A sternly worded letter", Pack: "Fallback Pack"},
		{Text: "Grandma's secret recipe", Pack: "Fallback Pack"},
		{Text: "A suspiciously large sandwich", Pack: "Fallback Pack"},
		{Text: "Interpretive dance", Pack: "Fallback Pack"},
		{Text: "Forgetting the password again", Pack: "Fallback Pack"},
		{Text: "A haunted treehouse", Pack: "Fallback Pack"},
		{Text: "A llama in a suit", Pack: "Fallback Pack"},
		{Text: "Emotional support houseplants", Pack: "Fallback Pack"},
		{Text: "The last slice of pizza", Pack: "Fallback Pack"},
		{Text: "Debugging CSS at 3 AM", Pack: "Developer Pack"},
		{Text: "Merge conflicts", Pack: "Developer Pack"},
		{Text: "Stack Overflow addiction", Pack: "Developer Pack"},
		{Text: "Deploying to production on Friday", Pack: "Developer Pack"},
		{Text: "Reading documentation", Pack: "Developer Pack"},
		{Text: "A flaky integration test", Pack: "Developer Pack"},
		{Text: "Off-by-one errors", Pack: "Developer Pack"},
		{Text: "Rewriting it in a new framework", Pack: "Developer Pack"},
		{Text: "A meeting that could have been an email", Pack: "Developer Pack"},
		{Text: "Tabs versus spaces", Pack: "Developer Pack"},
		{Text: "The intern's first commit", Pack: "Developer Pack"},
		{Text: "Legacy code nobody understands", Pack: "Developer Pack"},
		{Text: "A YAML indentation error", Pack: "Developer Pack"},
		{Text: "Turning it off and on again", Pack: "Developer Pack"},
		{Text: "An unexpected null", Pack: "Developer Pack"},
		{Text: "A keyboard full of crumbs", Pack: "Developer Pack"},
		{Text: "The cloud, which is just someone else's computer", Pack: "Developer Pack"},
		{Text: "A mysterious production hotfix", Pack: "Developer Pack"},
		{Text: "Coffee-driven development", Pack: "Developer Pack"},
		{Text: "Blaming the cache", Pack: "Developer Pack"},
		{Text: "A rubber duck with opinions", Pack: "Developer Pack"},
		{Text: "Works on my machine", Pack: "Developer Pack"},
		{Text: "Infinite scrolling", Pack: "Developer Pack"},
		{Text: "An unreadable regular expression", Pack: "Developer Pack"},
		{Text: "Ten thousand open browser tabs", Pack: "Developer Pack"},
	}
	return black, white
}
