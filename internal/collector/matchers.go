package collector

import (
	"regexp"
	"strconv"
	"strings"
)

// LogEvent represents a classified line from the game log
type LogEvent struct {
	Type string
	Data interface{}
}

// Event types
const (
	EventTypeAuthenticated  = "authenticated"
	EventTypeMatchFound     = "match_found"
	EventTypeRankedMatch    = "ranked_match_found"
	EventTypeBotMatch       = "bot_match_found"
	EventTypeGameResult     = "game_result"
	EventTypeRankUpdate     = "rank_update"
	EventTypeTeamBattleFlag = "team_battle_flag"
)

// Event data structures
type AuthenticatedData struct {
	Name string
}

// MatchFoundData covers casual and challenge (friend) matches. The opponent
// name may carry a trailing "*" crossplay marker; the tracker strips it.
type MatchFoundData struct {
	Challenge      bool
	OppName        string
	OppPlayerID    string
	OppPlatform    string
	OppPlatformID  string
	OppInputConfig string
	Seed           string // gameplay random seed, used as the match identifier
}

type RankedMatchFoundData struct {
	OppName        string
	OppPlayerID    string
	OppPlatform    string
	OppPlatformID  string
	OppInputConfig string
	Seed           string
	OppLeague      string
	OppRank        string
	PlayerLeague   string
	PlayerRank     string
	PlayerStars    string
}

type BotMatchFoundData struct{}

type RankUpdateData struct {
	League string
	Rank   string
	Stars  string
}

type TeamBattleFlagData struct {
	TeamBattle bool
}

type GameParticipant struct {
	Player    string
	Character string
	Score     int
}

type GameResultData struct {
	Winner GameParticipant
	Loser  GameParticipant
}

// Regular expressions for classifying log lines
var (
	authRegex           = regexp.MustCompile(`^NetAuth: authenticated as "(.+)"$`)
	casualMatchRegex    = regexp.MustCompile(`^Matchmaking: casual match found (.+)$`)
	challengeMatchRegex = regexp.MustCompile(`^Matchmaking: challenge match found (.+)$`)
	rankedMatchRegex    = regexp.MustCompile(`^Matchmaking: ranked match found (.+)$`)
	botMatchRegex       = regexp.MustCompile(`^Matchmaking: ranked bot match found$`)
	rankUpdateRegex     = regexp.MustCompile(`^RankedManager: rank update (.+)$`)
	teamBattleRegex     = regexp.MustCompile(`^FriendMatch: team battle lobby created$`)
	versusRegex         = regexp.MustCompile(`^FriendMatch: versus lobby created$`)
	gameResultRegex     = regexp.MustCompile(`^GameEnd: winner=(\S+) character=(\S+) score=(\d+) \| loser=(\S+) character=(\S+) score=(\d+)$`)
)

// ParseLine classifies a single log line. Returns nil when no pattern
// matches; unclassifiable lines are expected and not an error.
func ParseLine(line string) *LogEvent {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if match := authRegex.FindStringSubmatch(line); match != nil {
		return &LogEvent{Type: EventTypeAuthenticated, Data: AuthenticatedData{Name: match[1]}}
	}

	if match := casualMatchRegex.FindStringSubmatch(line); match != nil {
		return &LogEvent{Type: EventTypeMatchFound, Data: matchFoundFromFields(parseFields(match[1]), false)}
	}

	if match := challengeMatchRegex.FindStringSubmatch(line); match != nil {
		return &LogEvent{Type: EventTypeMatchFound, Data: matchFoundFromFields(parseFields(match[1]), true)}
	}

	if match := rankedMatchRegex.FindStringSubmatch(line); match != nil {
		fields := parseFields(match[1])
		return &LogEvent{Type: EventTypeRankedMatch, Data: RankedMatchFoundData{
			OppName:        fields["oppName"],
			OppPlayerID:    fields["oppPlayerId"],
			OppPlatform:    fields["oppPlatform"],
			OppPlatformID:  fields["oppPlatformId"],
			OppInputConfig: fields["oppInputConfig"],
			Seed:           fields["gameplayRandomSeed"],
			OppLeague:      fields["oppLeague"],
			OppRank:        fields["oppRank"],
			PlayerLeague:   fields["playerLeague"],
			PlayerRank:     fields["playerRank"],
			PlayerStars:    fields["playerStars"],
		}}
	}

	if botMatchRegex.MatchString(line) {
		return &LogEvent{Type: EventTypeBotMatch, Data: BotMatchFoundData{}}
	}

	if match := gameResultRegex.FindStringSubmatch(line); match != nil {
		winnerScore, _ := strconv.Atoi(match[3])
		loserScore, _ := strconv.Atoi(match[6])
		return &LogEvent{Type: EventTypeGameResult, Data: GameResultData{
			Winner: GameParticipant{Player: match[1], Character: match[2], Score: winnerScore},
			Loser:  GameParticipant{Player: match[4], Character: match[5], Score: loserScore},
		}}
	}

	if match := rankUpdateRegex.FindStringSubmatch(line); match != nil {
		fields := parseFields(match[1])
		return &LogEvent{Type: EventTypeRankUpdate, Data: RankUpdateData{
			League: fields["league"],
			Rank:   fields["rank"],
			Stars:  fields["stars"],
		}}
	}

	if teamBattleRegex.MatchString(line) {
		return &LogEvent{Type: EventTypeTeamBattleFlag, Data: TeamBattleFlagData{TeamBattle: true}}
	}

	if versusRegex.MatchString(line) {
		return &LogEvent{Type: EventTypeTeamBattleFlag, Data: TeamBattleFlagData{TeamBattle: false}}
	}

	return nil
}

func matchFoundFromFields(fields map[string]string, challenge bool) MatchFoundData {
	return MatchFoundData{
		Challenge:      challenge,
		OppName:        fields["oppName"],
		OppPlayerID:    fields["oppPlayerId"],
		OppPlatform:    fields["oppPlatform"],
		OppPlatformID:  fields["oppPlatformId"],
		OppInputConfig: fields["oppInputConfig"],
		Seed:           fields["gameplayRandomSeed"],
	}
}

// parseFields parses space-separated key=value pairs
func parseFields(info string) map[string]string {
	result := make(map[string]string)
	for _, part := range strings.Fields(info) {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		result[key] = value
	}
	return result
}
