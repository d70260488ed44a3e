package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// CheckTimer polls a round's phase deadline. Before the deadline it only
// reports the remaining time. Once the deadline has passed it forces the
// transition a player would have caused: card selection moves to judging, and
// judging picks a random submission on the judge's behalf, or completes the
// round without a winner when nothing was submitted. In the judging case the
// next round is opened here unless the game just ended.
//
// A forced transition that loses a race to another caller is dropped and
// reported as phaseChanged=false.
func (e *Engine) CheckTimer(ctx context.Context, roundID string) (TimerStatus, error) {
	gameID, ok := e.store.GameForRound(roundID)
	if !ok {
		return TimerStatus{}, ErrRoundNotFound
	}
	game, ok := e.store.GetGame(gameID)
	if !ok {
		return TimerStatus{}, ErrGameNotFound
	}
	round := game.round(roundID)
	if round == nil {
		return TimerStatus{}, ErrRoundNotFound
	}
	if game.Status != StatusActive || round.Status == RoundCompleted {
		return TimerStatus{NewPhase: string(round.Status)}, nil
	}

	remaining := e.remaining(game.TurnTimeLimitSeconds, round.PhaseStartedAt)
	if remaining > 0 {
		return TimerStatus{
			RemainingSeconds: int(math.Ceil(remaining.Seconds())),
			NewPhase:         string(round.Status),
		}, nil
	}

	observed := phaseObservation{status: round.Status, startAt: round.PhaseStartedAt}
	var (
		phase RoundStatus
		err   error
	)
	switch round.Status {
	case RoundCardSelection:
		phase, err = e.forceJudging(ctx, roundID, observed)
	case RoundJudging:
		phase, err = e.forceJudgement(ctx, *round, observed)
	}
	if errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrInvalidTransition) {
		e.logger.Debug("timer lost race", "game_id", gameID, "round", round.Number, "error", err)
		current, lookupErr := e.Round(roundID)
		if lookupErr != nil {
			return TimerStatus{}, lookupErr
		}
		return TimerStatus{NewPhase: string(current.Status)}, nil
	}
	if err != nil {
		return TimerStatus{}, err
	}
	return TimerStatus{PhaseChanged: true, NewPhase: string(phase)}, nil
}

func (e *Engine) remaining(limitSeconds int, startedAt time.Time) time.Duration {
	limit := time.Duration(limitSeconds) * time.Second
	left := limit - e.clock.Now().Sub(startedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (o phaseObservation) matches(round *Round) bool {
	return round.Status == o.status && round.PhaseStartedAt.Equal(o.startAt)
}

// forceJudging moves an expired card selection to judging, however many
// submissions it has.
func (e *Engine) forceJudging(ctx context.Context, roundID string, observed phaseObservation) (RoundStatus, error) {
	gameID, _ := e.store.GameForRound(roundID)
	snapshot, err := e.store.UpdateGameThen(gameID, func(game *Game) error {
		round := game.round(roundID)
		if round == nil {
			return ErrRoundNotFound
		}
		if game.Status != StatusActive || !observed.matches(round) {
			return fmt.Errorf("%w: round %d is %s", ErrConcurrencyConflict, round.Number, round.Status)
		}
		e.setRoundStatus(round, RoundJudging)
		return nil
	}, func(committed Game) {
		e.persistRoundStatus(ctx, committed, *committed.round(roundID), RoundJudging)
	})
	if err != nil {
		return "", err
	}
	round := *snapshot.round(roundID)
	e.logger.Info("card selection timed out", "game_id", gameID, "round", round.Number, "submissions", len(round.Submissions))
	return RoundJudging, nil
}

// forceJudgement settles an expired judging phase and, unless the game
// ended, opens the next round. The returned phase is the new round's.
func (e *Engine) forceJudgement(ctx context.Context, round Round, observed phaseObservation) (RoundStatus, error) {
	var (
		ended *Game
		err   error
	)
	if len(round.Submissions) > 0 {
		pick := round.Submissions[e.intn(len(round.Submissions))]
		ended, err = e.selectWinner(ctx, round.ID, pick.ID, round.JudgeID, &observed)
	} else {
		ended, err = e.skipJudging(ctx, round.ID, observed)
	}
	if err != nil {
		return "", err
	}
	e.logger.Info("judging timed out", "game_id", round.GameID, "round", round.Number, "submissions", len(round.Submissions))
	if ended != nil {
		return RoundCompleted, nil
	}

	next, err := e.CreateRound(ctx, round.GameID)
	switch {
	case err == nil:
		return next.Status, nil
	case errors.Is(err, ErrInvalidTransition):
		// Another caller opened the next round first.
		return RoundCompleted, nil
	case errors.Is(err, ErrInsufficientPlayers), errors.Is(err, ErrInsufficientCards):
		e.logger.Warn("next round not opened", "game_id", round.GameID, "error", err)
		return RoundCompleted, nil
	}
	return "", err
}

// skipJudging completes a judging round nobody submitted to. No point is
// awarded. The game ends here when this was the last round.
func (e *Engine) skipJudging(ctx context.Context, roundID string, observed phaseObservation) (*Game, error) {
	gameID, _ := e.store.GameForRound(roundID)
	var ended bool
	snapshot, err := e.store.UpdateGameThen(gameID, func(game *Game) error {
		round := game.round(roundID)
		if round == nil {
			return ErrRoundNotFound
		}
		if game.Status != StatusActive || !observed.matches(round) {
			return fmt.Errorf("%w: round %d is %s", ErrConcurrencyConflict, round.Number, round.Status)
		}
		e.setRoundStatus(round, RoundCompleted)
		if round.Number >= game.RoundLimit {
			e.finish(game)
			ended = true
		}
		return nil
	}, func(committed Game) {
		e.persistRoundStatus(ctx, committed, *committed.round(roundID), RoundCompleted)
		if ended {
			e.afterGameEnd(ctx, committed, "round_limit")
		}
	})
	if err != nil {
		return nil, err
	}
	if !ended {
		return nil, nil
	}
	return &snapshot, nil
}
