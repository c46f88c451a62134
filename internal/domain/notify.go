package domain

// Update kinds pushed to UI clients
const (
	KindPlayerUpdate = "playerUpdate"
	KindRankUpdate   = "rankUpdate"
	KindLiveResult   = "liveResult"
)

// PlayerUpdate is pushed when the authenticated player name changes (or is
// re-confirmed by the log).
type PlayerUpdate struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// RankUpdate is pushed when the player's ranked standing changes.
type RankUpdate struct {
	Kind   string `json:"kind"`
	League string `json:"league"`
	Rank   string `json:"rank"`
	Stars  string `json:"stars"`
}

// LiveResult is pushed after a game result is persisted.
type LiveResult struct {
	Kind            string `json:"kind"`
	MatchID         string `json:"matchId"`
	PlayerCharacter string `json:"playerCharacter"`
	OppCharacter    string `json:"oppCharacter"`
	PlayerScore     int    `json:"playerScore"`
	OppScore        int    `json:"oppScore"`
}
