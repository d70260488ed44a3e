package game

import (
	"context"
	"fmt"

	"card-czar/internal/cards"

	"github.com/google/uuid"
)

// blackCardBatch is how many prompts are requested per attempt; most
// catalogs mix in multi-pick prompts that get filtered out.
const blackCardBatch = 5

// fill tops the player's hand up to target with texts that appear nowhere
// else in the game. It must run with the game locked. Cards that could be
// dealt are committed even when the result is short, in which case the
// returned error wraps ErrInsufficientCards and is meant as a warning.
func (e *Engine) fill(ctx context.Context, game *Game, player *Player, target int) ([]CardHandle, error) {
	needed := target - len(player.Hand)
	if needed <= 0 {
		return nil, nil
	}
	exclude := dealExclusions(game, player)
	dealt := make([]CardHandle, 0, needed)
	var sourceErr error
	for attempt := 0; attempt < e.dealAttempts && len(dealt) < needed; attempt++ {
		remaining := needed - len(dealt)
		request := remaining * (attempt + 1)
		batch, err := e.cards.WhiteCards(ctx, request, exclude)
		if err != nil {
			sourceErr = err
			break
		}
		for _, card := range batch {
			if len(dealt) == needed {
				break
			}
			if card.Text == "" {
				continue
			}
			if _, taken := exclude[card.Text]; taken {
				continue
			}
			exclude[card.Text] = struct{}{}
			pack := card.Pack
			if pack == "" {
				pack = "Unknown"
			}
			dealt = append(dealt, CardHandle{ID: uuid.NewString(), Text: card.Text, Pack: pack})
		}
		if len(batch) < request {
			break
		}
	}

	player.Hand = append(player.Hand, dealt...)
	if game.Dealt == nil {
		game.Dealt = make(map[string]struct{})
	}
	for _, card := range dealt {
		game.Dealt[card.Text] = struct{}{}
	}

	switch {
	case sourceErr != nil:
		return dealt, fmt.Errorf("%w: dealt %d of %d: %v", ErrInsufficientCards, len(dealt), needed, sourceErr)
	case len(dealt) < needed:
		return dealt, fmt.Errorf("%w: dealt %d of %d", ErrInsufficientCards, len(dealt), needed)
	}
	return dealt, nil
}

// dealExclusions is every text a new card may not carry: the ledger plus
// all hands still in play.
func dealExclusions(game *Game, player *Player) map[string]struct{} {
	exclude := make(map[string]struct{}, len(game.Dealt))
	for text := range game.Dealt {
		exclude[text] = struct{}{}
	}
	for _, card := range player.Hand {
		exclude[card.Text] = struct{}{}
	}
	for _, other := range game.activePlayers() {
		for _, card := range other.Hand {
			exclude[card.Text] = struct{}{}
		}
	}
	return exclude
}

// drawBlackCard picks an unused single-pick prompt. The prompt is recorded
// in the game's black card ledger.
func (e *Engine) drawBlackCard(ctx context.Context, game *Game) (cards.BlackCard, error) {
	if game.UsedBlackCards == nil {
		game.UsedBlackCards = make(map[string]struct{})
	}
	exclude := make(map[string]struct{}, len(game.UsedBlackCards))
	for text := range game.UsedBlackCards {
		exclude[text] = struct{}{}
	}
	for attempt := 0; attempt < e.dealAttempts; attempt++ {
		request := blackCardBatch * (attempt + 1)
		batch, err := e.cards.BlackCards(ctx, request, exclude)
		if err != nil {
			return cards.BlackCard{}, fmt.Errorf("%w: black cards: %v", ErrInsufficientCards, err)
		}
		for _, card := range batch {
			if card.Text == "" {
				continue
			}
			if _, used := exclude[card.Text]; used {
				continue
			}
			if card.Pick != 1 {
				exclude[card.Text] = struct{}{}
				continue
			}
			game.UsedBlackCards[card.Text] = struct{}{}
			return card, nil
		}
		if len(batch) < request {
			break
		}
	}
	return cards.BlackCard{}, fmt.Errorf("%w: no single-pick black card left", ErrInsufficientCards)
}
