package game

// PointsPerRound is what the chosen submission's player earns.
const PointsPerRound = 1

// Result is the outcome of resolving a score distribution.
type Result struct {
	WinnerID   string
	Tie        bool
	TopScore   int
	TopPlayers []string
}

// Resolve finds the top score among players. More than one player on the top
// score is a tie and yields no winner. Natural and early game endings both go
// through here.
func Resolve(players []Player) Result {
	if len(players) == 0 {
		return Result{}
	}
	top := players[0].Score
	for _, player := range players[1:] {
		if player.Score > top {
			top = player.Score
		}
	}
	result := Result{TopScore: top}
	for _, player := range players {
		if player.Score == top {
			result.TopPlayers = append(result.TopPlayers, player.ID)
		}
	}
	if len(result.TopPlayers) > 1 {
		result.Tie = true
		return result
	}
	result.WinnerID = result.TopPlayers[0]
	return result
}

// award credits the round's winning submission to its player.
func award(game *Game, playerID string) {
	if player := game.player(playerID); player != nil {
		player.Score += PointsPerRound
	}
}
