package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scored(scores ...int) []Player {
	ids := []string{"A", "B", "C", "D"}
	players := make([]Player, len(scores))
	for i, score := range scores {
		players[i] = Player{ID: ids[i], Score: score, Active: true}
	}
	return players
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   Result
	}{
		{
			name:   "two players share the top score",
			scores: []int{3, 3, 2},
			want:   Result{Tie: true, TopScore: 3, TopPlayers: []string{"A", "B"}},
		},
		{
			name:   "single leader",
			scores: []int{5, 3, 3},
			want:   Result{WinnerID: "A", TopScore: 5, TopPlayers: []string{"A"}},
		},
		{
			name:   "leader last",
			scores: []int{0, 1, 2, 4},
			want:   Result{WinnerID: "D", TopScore: 4, TopPlayers: []string{"D"}},
		},
		{
			name:   "nobody scored",
			scores: []int{0, 0},
			want:   Result{Tie: true, TopScore: 0, TopPlayers: []string{"A", "B"}},
		},
		{
			name: "no players",
			want: Result{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(scored(tt.scores...)))
		})
	}
}

func TestAwardIgnoresUnknownPlayer(t *testing.T) {
	game := &Game{Players: scored(1, 0)}
	award(game, "B")
	award(game, "Z")
	assert.Equal(t, 1, game.Players[0].Score)
	assert.Equal(t, PointsPerRound, game.Players[1].Score)
}
