package game

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// CreateRound opens the next round of an active game. It fails with
// ErrInvalidTransition while the previous round is unfinished, so racing
// callers create at most one round.
func (e *Engine) CreateRound(ctx context.Context, gameID string) (Round, error) {
	var round Round
	_, err := e.store.UpdateGameThen(gameID, func(game *Game) error {
		created, err := e.openRound(ctx, game)
		if err != nil {
			return err
		}
		round = created.clone()
		return nil
	}, func(committed Game) {
		e.persistRound(ctx, committed, round)
	})
	if err != nil {
		return Round{}, err
	}
	e.logger.Debug("round created", "game_id", gameID, "round", round.Number, "judge", round.JudgeID)
	return round, nil
}

// openRound must run with the game locked. Nothing is changed when it fails.
func (e *Engine) openRound(ctx context.Context, game *Game) (*Round, error) {
	if game.Status != StatusActive {
		return nil, fmt.Errorf("%w: game is %s", ErrInvalidTransition, game.Status)
	}
	if current := game.currentRound(); current != nil && current.Status != RoundCompleted {
		return nil, fmt.Errorf("%w: round %d is %s", ErrInvalidTransition, current.Number, current.Status)
	}
	if len(game.activePlayers()) < 2 {
		return nil, fmt.Errorf("%w: need 2 active players", ErrInsufficientPlayers)
	}
	judge := e.nextJudge(game)
	if judge == nil {
		return nil, fmt.Errorf("%w: no judge available", ErrInsufficientPlayers)
	}
	black, err := e.drawBlackCard(ctx, game)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now().UTC()
	game.CurrentRoundNumber++
	game.Rounds = append(game.Rounds, Round{
		ID:             uuid.NewString(),
		GameID:         game.ID,
		Number:         game.CurrentRoundNumber,
		BlackCard:      black,
		JudgeID:        judge.ID,
		Status:         RoundCardSelection,
		PhaseStartedAt: now,
		StartedAt:      now,
	})
	round := game.currentRound()
	e.store.indexRound(round.ID, game.ID)
	return round, nil
}

// nextJudge picks a random active player for the first round. Later rounds
// go to the first active player after the previous judge in turn order,
// wrapping around. The previous judge's turn order anchors the rotation even
// when that player has since left.
func (e *Engine) nextJudge(game *Game) *Player {
	active := game.activePlayers()
	if len(active) == 0 {
		return nil
	}
	previous := game.currentRound()
	if previous == nil {
		return active[e.intn(len(active))]
	}
	anchor := 0
	if judge := game.player(previous.JudgeID); judge != nil {
		anchor = judge.TurnOrder
	}
	sort.Slice(active, func(i, j int) bool { return active[i].TurnOrder < active[j].TurnOrder })
	for _, player := range active {
		if player.TurnOrder > anchor {
			return player
		}
	}
	return active[0]
}

// SubmitCard plays one card from the player's hand into the round, refills
// the hand and moves the round to judging once every active non-judge player
// has submitted.
func (e *Engine) SubmitCard(ctx context.Context, roundID, playerID, cardID string) (Submission, error) {
	gameID, ok := e.store.GameForRound(roundID)
	if !ok {
		return Submission{}, ErrRoundNotFound
	}
	var (
		submission Submission
		refill     []CardHandle
		judging    bool
	)
	_, err := e.store.UpdateGameThen(gameID, func(game *Game) error {
		round := game.round(roundID)
		if round == nil {
			return ErrRoundNotFound
		}
		if game.Status != StatusActive {
			return fmt.Errorf("%w: game is %s", ErrInvalidTransition, game.Status)
		}
		if round.Status != RoundCardSelection {
			return fmt.Errorf("%w: round %d is %s", ErrInvalidTransition, round.Number, round.Status)
		}
		player := game.player(playerID)
		if player == nil || !player.Active {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		if round.JudgeID == playerID {
			return fmt.Errorf("%w: the judge does not submit", ErrNotAuthorized)
		}
		if round.submittedBy(playerID) {
			return fmt.Errorf("%w: %s already submitted in round %d", ErrDuplicateSubmission, playerID, round.Number)
		}
		index := -1
		for i, card := range player.Hand {
			if card.ID == cardID {
				index = i
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
		}

		card := player.Hand[index]
		player.Hand = append(player.Hand[:index:index], player.Hand[index+1:]...)
		round.Submissions = append(round.Submissions, Submission{
			ID:          uuid.NewString(),
			RoundID:     round.ID,
			PlayerID:    playerID,
			Cards:       []CardHandle{card},
			SubmittedAt: e.clock.Now().UTC(),
		})
		submission = round.Submissions[len(round.Submissions)-1].clone()

		hand, err := e.fill(ctx, game, player, e.handSize)
		if err != nil {
			e.warnShortDeal(game.ID, player.ID, err)
		}
		refill = hand

		if allSubmitted(game, round) {
			e.setRoundStatus(round, RoundJudging)
			judging = true
		}
		return nil
	}, func(committed Game) {
		e.persistSubmission(ctx, committed, submission, refill)
		if judging {
			e.persistRoundStatus(ctx, committed, *committed.round(roundID), RoundJudging)
		}
	})
	if err != nil {
		return Submission{}, err
	}
	return submission, nil
}

func (s Submission) clone() Submission {
	s.Cards = append([]CardHandle(nil), s.Cards...)
	return s
}

// allSubmitted reports whether every active player other than the judge has
// a submission in the round.
func allSubmitted(game *Game, round *Round) bool {
	waiting := 0
	for _, player := range game.activePlayers() {
		if player.ID == round.JudgeID {
			continue
		}
		if !round.submittedBy(player.ID) {
			waiting++
		}
	}
	return waiting == 0
}

func (e *Engine) setRoundStatus(round *Round, status RoundStatus) {
	now := e.clock.Now().UTC()
	round.Status = status
	round.PhaseStartedAt = now
	if status == RoundCompleted {
		round.EndedAt = now
	}
}

// SelectWinner lets the round's judge pick the winning submission. The
// returned game is non-nil only when this round ended the game; otherwise
// the caller opens the next round with CreateRound.
func (e *Engine) SelectWinner(ctx context.Context, roundID, submissionID, actingPlayerID string) (*Game, error) {
	return e.selectWinner(ctx, roundID, submissionID, actingPlayerID, nil)
}

// phaseObservation pins the round state a timer decision was based on.
type phaseObservation struct {
	status  RoundStatus
	startAt time.Time
}

// selectWinner commits a judging decision. With observed set the decision
// was made outside the lock, and it is dropped with ErrConcurrencyConflict
// if the round moved on in the meantime.
func (e *Engine) selectWinner(ctx context.Context, roundID, submissionID, actingPlayerID string, observed *phaseObservation) (*Game, error) {
	gameID, ok := e.store.GameForRound(roundID)
	if !ok {
		return nil, ErrRoundNotFound
	}
	var (
		ended    bool
		winnerID string
	)
	snapshot, err := e.store.UpdateGameThen(gameID, func(game *Game) error {
		round := game.round(roundID)
		if round == nil {
			return ErrRoundNotFound
		}
		if observed != nil && (round.Status != observed.status || !round.PhaseStartedAt.Equal(observed.startAt)) {
			return fmt.Errorf("%w: round %d is %s", ErrConcurrencyConflict, round.Number, round.Status)
		}
		if game.Status != StatusActive || round.Status != RoundJudging {
			return fmt.Errorf("%w: round %d is %s", ErrInvalidTransition, round.Number, round.Status)
		}
		if round.JudgeID != actingPlayerID {
			return fmt.Errorf("%w: %s is not the judge", ErrNotAuthorized, actingPlayerID)
		}
		submission := round.submission(submissionID)
		if submission == nil {
			return fmt.Errorf("%w: %s", ErrSubmissionNotFound, submissionID)
		}

		submission.IsWinner = true
		round.WinningSubmissionID = submission.ID
		winnerID = submission.PlayerID
		award(game, submission.PlayerID)
		e.setRoundStatus(round, RoundCompleted)

		if round.Number >= game.RoundLimit {
			e.finish(game)
			ended = true
		}
		return nil
	}, func(committed Game) {
		e.persistWinner(ctx, committed, *committed.round(roundID), winnerID)
		if ended {
			e.afterGameEnd(ctx, committed, "round_limit")
		}
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("round judged", "game_id", gameID, "round", snapshot.round(roundID).Number, "winner", winnerID)
	if !ended {
		return nil, nil
	}
	return &snapshot, nil
}

// Submissions lists the round's submissions in submission order.
func (e *Engine) Submissions(roundID string) ([]Submission, error) {
	round, err := e.Round(roundID)
	if err != nil {
		return nil, err
	}
	return round.Submissions, nil
}
