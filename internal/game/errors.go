package game

import "errors"

var (
	// ErrInvalidTransition: the game or round is not in the status the action requires.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNotAuthorized: the acting player may not perform this action.
	ErrNotAuthorized       = errors.New("not authorized")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrCardNotInHand       = errors.New("card not in hand")
	ErrInsufficientPlayers = errors.New("insufficient players")
	// ErrInsufficientCards is a warning when returned from dealing: the hand
	// was filled as far as the card source allowed.
	ErrInsufficientCards = errors.New("insufficient cards")
	// ErrConcurrencyConflict: another caller changed the round first. The
	// losing operation had no effect.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	ErrGameNotFound       = errors.New("game not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)
