package game

import (
	"maps"
	"time"

	"card-czar/internal/cards"
)

type GameStatus string

const (
	StatusWaiting GameStatus = "waiting"
	StatusActive  GameStatus = "active"
	StatusEnded   GameStatus = "ended"
)

type RoundStatus string

const (
	RoundCardSelection RoundStatus = "card_selection"
	RoundJudging       RoundStatus = "judging"
	RoundCompleted     RoundStatus = "completed"
)

// rank orders round statuses; a round only ever moves to a higher rank.
func (s RoundStatus) rank() int {
	switch s {
	case RoundCardSelection:
		return 1
	case RoundJudging:
		return 2
	case RoundCompleted:
		return 3
	default:
		return 0
	}
}

// CardHandle is a white card as held by one player. It is a value: dealing
// copies catalog content into a fresh handle with its own ID.
type CardHandle struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Pack string `json:"pack"`
}

type Room struct {
	ID                   string
	RoundLimit           int
	TurnTimeLimitSeconds int
}

type Player struct {
	ID        string
	Score     int
	TurnOrder int
	Hand      []CardHandle
	Active    bool
}

type Game struct {
	ID                   string
	RoomID               string
	Status               GameStatus
	CurrentRoundNumber   int
	WinnerID             string
	Tie                  bool
	RoundLimit           int
	TurnTimeLimitSeconds int
	Players              []Player
	Rounds               []Round
	Dealt                map[string]struct{}
	UsedBlackCards       map[string]struct{}
	CreatedAt            time.Time
	StartedAt            time.Time
	EndedAt              time.Time
}

type Round struct {
	ID                  string
	GameID              string
	Number              int
	BlackCard           cards.BlackCard
	JudgeID             string
	Status              RoundStatus
	PhaseStartedAt      time.Time
	StartedAt           time.Time
	EndedAt             time.Time
	Submissions         []Submission
	WinningSubmissionID string
}

type Submission struct {
	ID          string
	RoundID     string
	PlayerID    string
	Cards       []CardHandle
	IsWinner    bool
	SubmittedAt time.Time
}

// TimerStatus is the answer to a timer poll.
type TimerStatus struct {
	RemainingSeconds int
	PhaseChanged     bool
	NewPhase         string
}

// HasSingleWinner reports whether an ended game has exactly one top scorer.
func (g Game) HasSingleWinner() bool {
	return g.Status == StatusEnded && !g.Tie && g.WinnerID != ""
}

func (g *Game) clone() Game {
	out := *g
	out.Players = make([]Player, len(g.Players))
	for i, player := range g.Players {
		out.Players[i] = player.clone()
	}
	out.Rounds = make([]Round, len(g.Rounds))
	for i, round := range g.Rounds {
		out.Rounds[i] = round.clone()
	}
	out.Dealt = maps.Clone(g.Dealt)
	out.UsedBlackCards = maps.Clone(g.UsedBlackCards)
	return out
}

func (p Player) clone() Player {
	p.Hand = append([]CardHandle(nil), p.Hand...)
	return p
}

func (r Round) clone() Round {
	subs := make([]Submission, len(r.Submissions))
	for i, sub := range r.Submissions {
		sub.Cards = append([]CardHandle(nil), sub.Cards...)
		subs[i] = sub
	}
	r.Submissions = subs
	return r
}

func (g *Game) player(id string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

func (g *Game) activePlayers() []*Player {
	active := make([]*Player, 0, len(g.Players))
	for i := range g.Players {
		if g.Players[i].Active {
			active = append(active, &g.Players[i])
		}
	}
	return active
}

func (g *Game) currentRound() *Round {
	if len(g.Rounds) == 0 {
		return nil
	}
	return &g.Rounds[len(g.Rounds)-1]
}

func (g *Game) round(id string) *Round {
	for i := range g.Rounds {
		if g.Rounds[i].ID == id {
			return &g.Rounds[i]
		}
	}
	return nil
}

func (r *Round) submission(id string) *Submission {
	for i := range r.Submissions {
		if r.Submissions[i].ID == id {
			return &r.Submissions[i]
		}
	}
	return nil
}

func (r *Round) submittedBy(playerID string) bool {
	for _, sub := range r.Submissions {
		if sub.PlayerID == playerID {
			return true
		}
	}
	return false
}
