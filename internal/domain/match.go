package domain

import "time"

// MatchType classifies one match lifecycle.
type MatchType string

const (
	MatchCasual    MatchType = "casual"
	MatchChallenge MatchType = "challenge"
	MatchRanked    MatchType = "ranked"
	MatchBotRanked MatchType = "bot_ranked"
)

// PlayerState is the tracked local player. It survives across matches until
// overwritten by an authentication or rank event.
type PlayerState struct {
	Name   string `json:"name"`
	League string `json:"league"`
	Rank   string `json:"rank"`
	Stars  string `json:"stars"`
}

// OpponentState is the opponent of the current match. Reset at every
// match-found event.
type OpponentState struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	League string `json:"league"`
	Rank   string `json:"rank"`
}

// DefaultOpponent returns the reset opponent state ("-1" means unknown id).
func DefaultOpponent() OpponentState {
	return OpponentState{ID: "-1"}
}

// MatchRecord is one durable match row. A row is written at most once per
// match id; later writes for the same id are no-ops.
type MatchRecord struct {
	MatchID        string    `json:"match_id"`
	Timestamp      time.Time `json:"timestamp"`
	PlayerLeague   string    `json:"player_league"`
	PlayerRank     string    `json:"player_rank"`
	PlayerStars    string    `json:"player_stars"`
	OppID          string    `json:"opp_id"`
	OppName        string    `json:"opp_name"`
	OppPlatform    string    `json:"opp_platform"`
	OppPlatformID  string    `json:"opp_platform_id"`
	OppInputConfig string    `json:"opp_input_config"`
	OppLeague      string    `json:"opp_league"`
	OppRank        string    `json:"opp_rank"`
	MatchType      MatchType `json:"match_type"`
}

// GameRecord is one completed game within a match. Unique on
// (player_character, opp_character, match_id); duplicates are dropped.
type GameRecord struct {
	MatchID         string `json:"match_id"`
	PlayerCharacter string `json:"player_character"`
	OppCharacter    string `json:"opp_character"`
	PlayerScore     string `json:"player_score"`
	OppScore        string `json:"opp_score"`
}

// MatchSummary is a match with its games, for the history API.
type MatchSummary struct {
	MatchRecord
	Games []GameRecord `json:"games"`
}

// WinLossSummary aggregates results for one match type, computed from
// persisted rows only. Matches without a completed game are excluded.
type WinLossSummary struct {
	MatchType MatchType `json:"match_type"`
	Total     int       `json:"total"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	Wins30    int       `json:"wins_30"`
	Losses30  int       `json:"losses_30"`
	BestRank  string    `json:"best_rank"`
	FirstRank string    `json:"first_rank"`
}
