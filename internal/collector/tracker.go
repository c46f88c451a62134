package collector

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/grimkor/fs-log-parser/internal/domain"
)

// Effect is a side effect requested by the tracker for one handled event.
// Persistence effects must be executed in the order they were emitted.
type Effect interface {
	effect()
}

// PersistPlayerName stores the authenticated player name
type PersistPlayerName struct {
	Name string
}

// PersistRank stores the player's ranked standing
type PersistRank struct {
	League string
	Rank   string
	Stars  string
}

// PersistMatch creates the match row if it does not exist yet
type PersistMatch struct {
	Record domain.MatchRecord
}

// PersistGame appends a game row to its match
type PersistGame struct {
	Record domain.GameRecord
}

// PushPlayer notifies UI clients of the player identity
type PushPlayer struct {
	Name string
}

// PushRank notifies UI clients of a rank change
type PushRank struct {
	League string
	Rank   string
	Stars  string
}

// PushLiveResult notifies UI clients of a persisted game result
type PushLiveResult struct {
	MatchID         string
	PlayerCharacter string
	OppCharacter    string
	PlayerScore     int
	OppScore        int
}

func (PersistPlayerName) effect() {}
func (PersistRank) effect()       {}
func (PersistMatch) effect()      {}
func (PersistGame) effect()       {}
func (PushPlayer) effect()        {}
func (PushRank) effect()          {}
func (PushLiveResult) effect()    {}

// matchMeta is the opaque match-found payload kept for later persistence
type matchMeta struct {
	oppPlatform    string
	oppPlatformID  string
	oppInputConfig string
	seed           string
}

// matchSession is the in-memory state of the active match. A fresh session
// replaces it whenever a casual/challenge/ranked match is found.
type matchSession struct {
	matchID   string // empty until the first game of this match is persisted
	matchType domain.MatchType
	meta      *matchMeta
}

func freshSession() matchSession {
	return matchSession{matchType: domain.MatchCasual}
}

// Tracker folds classified log events into match and game outcomes. It is
// not safe for concurrent use; events must be handled in arrival order.
type Tracker struct {
	player   domain.PlayerState
	opponent domain.OpponentState
	session  matchSession

	// teamBattle distinguishes a multi-game team-battle challenge from a
	// sequence of 1v1 challenge matches. It is toggled by lobby lines and
	// deliberately survives session resets: the lobby outlives each match.
	teamBattle bool
}

// NewTracker creates a tracker with default state
func NewTracker() *Tracker {
	return &Tracker{
		player:   domain.PlayerState{Stars: "0"},
		opponent: domain.DefaultOpponent(),
		session:  freshSession(),
	}
}

// SetPlayerName seeds the tracked player identity, used at startup from the
// persisted config before any line is processed.
func (t *Tracker) SetPlayerName(name string) {
	t.player.Name = name
}

// Player returns a copy of the tracked player state
func (t *Tracker) Player() domain.PlayerState {
	return t.player
}

// Handle folds one classified event into the tracker state and returns the
// side effects to execute. A nil event (unclassified line) is a no-op.
func (t *Tracker) Handle(ev *LogEvent) []Effect {
	if ev == nil {
		return nil
	}

	switch data := ev.Data.(type) {
	case AuthenticatedData:
		return t.handleAuthenticated(data)
	case MatchFoundData:
		t.handleMatchFound(data)
	case RankedMatchFoundData:
		t.handleRankedMatchFound(data)
	case BotMatchFoundData:
		// Bot matches are layered onto the already-open session; their
		// games are never recorded.
		t.session.matchType = domain.MatchBotRanked
	case RankUpdateData:
		return t.handleRankUpdate(data)
	case TeamBattleFlagData:
		t.teamBattle = data.TeamBattle
	case GameResultData:
		return t.handleGameResult(data)
	}
	return nil
}

func (t *Tracker) handleAuthenticated(data AuthenticatedData) []Effect {
	var effects []Effect
	if data.Name != "" && t.player.Name != data.Name {
		t.player.Name = data.Name
		effects = append(effects, PersistPlayerName{Name: data.Name})
	}
	return append(effects, PushPlayer{Name: t.player.Name})
}

func (t *Tracker) handleMatchFound(data MatchFoundData) {
	t.reset()
	if data.Challenge {
		t.session.matchType = domain.MatchChallenge
	}
	t.opponent.Name = stripCrossplayMarker(data.OppName)
	t.opponent.ID = data.OppPlayerID
	t.session.meta = &matchMeta{
		oppPlatform:    data.OppPlatform,
		oppPlatformID:  data.OppPlatformID,
		oppInputConfig: data.OppInputConfig,
		seed:           data.Seed,
	}
}

func (t *Tracker) handleRankedMatchFound(data RankedMatchFoundData) {
	t.reset()
	t.session.matchType = domain.MatchRanked
	t.opponent.Name = stripCrossplayMarker(data.OppName)
	t.opponent.ID = data.OppPlayerID
	t.opponent.League = data.OppLeague
	t.opponent.Rank = data.OppRank
	t.player.League = data.PlayerLeague
	t.player.Rank = data.PlayerRank
	t.player.Stars = data.PlayerStars
	t.session.meta = &matchMeta{
		oppPlatform:    data.OppPlatform,
		oppPlatformID:  data.OppPlatformID,
		oppInputConfig: data.OppInputConfig,
		seed:           data.Seed,
	}
}

func (t *Tracker) handleRankUpdate(data RankUpdateData) []Effect {
	t.player.League = data.League
	t.player.Rank = data.Rank
	t.player.Stars = data.Stars
	return []Effect{
		PersistRank{League: data.League, Rank: data.Rank, Stars: data.Stars},
		PushRank{League: data.League, Rank: data.Rank, Stars: data.Stars},
	}
}

func (t *Tracker) handleGameResult(g GameResultData) []Effect {
	if t.session.matchType == domain.MatchBotRanked {
		return nil
	}

	// Attribution: prefer the known opponent, fall back to the known player
	// name. A result naming neither identity is not our match.
	var playerWins bool
	switch {
	case t.opponent.Name != "" && participates(g, t.opponent.Name):
		playerWins = g.Winner.Player != t.opponent.Name
	case t.player.Name != "" && participates(g, t.player.Name):
		playerWins = g.Winner.Player == t.player.Name
	default:
		return nil
	}

	self, opp := g.Loser, g.Winner
	if playerWins {
		self, opp = g.Winner, g.Loser
	}

	// Ranked matches and team-battle challenges are best-of-N sets: later
	// games continue the already-persisted match.
	continuing := t.session.matchID != "" &&
		(t.session.matchType == domain.MatchRanked ||
			(t.session.matchType == domain.MatchChallenge && t.teamBattle))

	var effects []Effect
	matchID := t.session.matchID
	if !continuing {
		matchID = t.synthesizeMatchID()
		effects = append(effects, PersistMatch{Record: t.matchRecord(matchID)})
	}
	t.session.matchID = matchID

	effects = append(effects,
		PersistGame{Record: domain.GameRecord{
			MatchID:         matchID,
			PlayerCharacter: self.Character,
			OppCharacter:    opp.Character,
			PlayerScore:     strconv.Itoa(self.Score),
			OppScore:        strconv.Itoa(opp.Score),
		}},
		PushLiveResult{
			MatchID:         matchID,
			PlayerCharacter: self.Character,
			OppCharacter:    opp.Character,
			PlayerScore:     self.Score,
			OppScore:        opp.Score,
		},
	)
	return effects
}

// synthesizeMatchID derives the durable match identifier: the gameplay
// random seed when present, otherwise a UUID generated once per session so
// seedless matches do not collide on an empty key.
func (t *Tracker) synthesizeMatchID() string {
	if t.session.matchID != "" {
		return t.session.matchID
	}
	if t.session.meta != nil && t.session.meta.seed != "" {
		return t.session.meta.seed
	}
	return uuid.NewString()
}

func (t *Tracker) matchRecord(matchID string) domain.MatchRecord {
	rec := domain.MatchRecord{
		MatchID:      matchID,
		PlayerLeague: t.player.League,
		PlayerRank:   t.player.Rank,
		PlayerStars:  t.player.Stars,
		OppID:        t.opponent.ID,
		OppName:      t.opponent.Name,
		OppLeague:    t.opponent.League,
		OppRank:      t.opponent.Rank,
		MatchType:    t.session.matchType,
	}
	if t.session.meta != nil {
		rec.OppPlatform = t.session.meta.oppPlatform
		rec.OppPlatformID = t.session.meta.oppPlatformID
		rec.OppInputConfig = t.session.meta.oppInputConfig
	}
	return rec
}

// reset discards the session and opponent at a match-found boundary. Any
// in-flight game data from the previous match is intentionally dropped: a
// new match-found line always supersedes prior session state.
func (t *Tracker) reset() {
	t.session = freshSession()
	t.opponent = domain.DefaultOpponent()
}

func participates(g GameResultData, name string) bool {
	return g.Winner.Player == name || g.Loser.Player == name
}

// stripCrossplayMarker removes the trailing "*" crossplay annotation from an
// opponent name.
func stripCrossplayMarker(name string) string {
	return strings.Replace(name, "*", "", 1)
}
