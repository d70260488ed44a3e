package game

type EventPayload struct {
	RoomID       string `json:"room_id,omitempty"`
	PlayerID     string `json:"player_id,omitempty"`
	RoundNumber  int    `json:"round_number,omitempty"`
	JudgeID      string `json:"judge_id,omitempty"`
	Phase        string `json:"phase,omitempty"`
	Reason       string `json:"reason,omitempty"`
	BlackCard    string `json:"black_card,omitempty"`
	SubmissionID string `json:"submission_id,omitempty"`
	WinnerID     string `json:"winner_id,omitempty"`
	Tie          bool   `json:"tie,omitempty"`
	Count        int    `json:"count,omitempty"`
}
