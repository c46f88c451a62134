package collector

import "testing"

func TestParseLineAuthenticated(t *testing.T) {
	ev := ParseLine(`NetAuth: authenticated as "Rei"`)
	if ev == nil || ev.Type != EventTypeAuthenticated {
		t.Fatalf("expected authenticated event, got %#v", ev)
	}
	if data := ev.Data.(AuthenticatedData); data.Name != "Rei" {
		t.Errorf("name = %q, want Rei", data.Name)
	}
}

func TestParseLineCasualMatch(t *testing.T) {
	ev := ParseLine(`Matchmaking: casual match found oppName=Ken* oppPlayerId=42 oppPlatform=Steam oppPlatformId=765611 oppInputConfig=1 gameplayRandomSeed=abc123`)
	if ev == nil || ev.Type != EventTypeMatchFound {
		t.Fatalf("expected match_found event, got %#v", ev)
	}
	data := ev.Data.(MatchFoundData)
	if data.Challenge {
		t.Error("casual match should not be a challenge")
	}
	// The raw marker is preserved here; the tracker strips it
	if data.OppName != "Ken*" {
		t.Errorf("opp name = %q, want Ken*", data.OppName)
	}
	if data.Seed != "abc123" || data.OppPlayerID != "42" || data.OppPlatform != "Steam" {
		t.Errorf("unexpected fields %#v", data)
	}
}

func TestParseLineChallengeMatch(t *testing.T) {
	ev := ParseLine(`Matchmaking: challenge match found oppName=Ken oppPlayerId=42 gameplayRandomSeed=s1`)
	if ev == nil || ev.Type != EventTypeMatchFound {
		t.Fatalf("expected match_found event, got %#v", ev)
	}
	if data := ev.Data.(MatchFoundData); !data.Challenge {
		t.Error("challenge match should set Challenge")
	}
}

func TestParseLineRankedMatch(t *testing.T) {
	ev := ParseLine(`Matchmaking: ranked match found oppName=Ken* oppPlayerId=42 oppPlatform=Steam oppPlatformId=765611 oppInputConfig=1 gameplayRandomSeed=abc123 oppLeague=Gold oppRank=3 playerLeague=Gold playerRank=1 playerStars=2`)
	if ev == nil || ev.Type != EventTypeRankedMatch {
		t.Fatalf("expected ranked_match_found event, got %#v", ev)
	}
	data := ev.Data.(RankedMatchFoundData)
	if data.OppRank != "3" || data.PlayerRank != "1" || data.PlayerStars != "2" {
		t.Errorf("unexpected rank fields %#v", data)
	}
	if data.Seed != "abc123" {
		t.Errorf("seed = %q, want abc123", data.Seed)
	}
}

func TestParseLineBotMatch(t *testing.T) {
	ev := ParseLine(`Matchmaking: ranked bot match found`)
	if ev == nil || ev.Type != EventTypeBotMatch {
		t.Fatalf("expected bot_match_found event, got %#v", ev)
	}
}

func TestParseLineGameResult(t *testing.T) {
	ev := ParseLine(`GameEnd: winner=Rei character=Ryu score=2 | loser=Ken character=Akuma score=1`)
	if ev == nil || ev.Type != EventTypeGameResult {
		t.Fatalf("expected game_result event, got %#v", ev)
	}
	data := ev.Data.(GameResultData)
	if data.Winner.Player != "Rei" || data.Winner.Character != "Ryu" || data.Winner.Score != 2 {
		t.Errorf("unexpected winner %#v", data.Winner)
	}
	if data.Loser.Player != "Ken" || data.Loser.Character != "Akuma" || data.Loser.Score != 1 {
		t.Errorf("unexpected loser %#v", data.Loser)
	}
}

func TestParseLineRankUpdate(t *testing.T) {
	ev := ParseLine(`RankedManager: rank update league=Gold rank=2 stars=3`)
	if ev == nil || ev.Type != EventTypeRankUpdate {
		t.Fatalf("expected rank_update event, got %#v", ev)
	}
	data := ev.Data.(RankUpdateData)
	if data.League != "Gold" || data.Rank != "2" || data.Stars != "3" {
		t.Errorf("unexpected fields %#v", data)
	}
}

func TestParseLineTeamBattleFlags(t *testing.T) {
	ev := ParseLine(`FriendMatch: team battle lobby created`)
	if ev == nil || ev.Type != EventTypeTeamBattleFlag {
		t.Fatalf("expected team_battle_flag event, got %#v", ev)
	}
	if !ev.Data.(TeamBattleFlagData).TeamBattle {
		t.Error("team battle lobby should set the flag")
	}

	ev = ParseLine(`FriendMatch: versus lobby created`)
	if ev == nil || ev.Type != EventTypeTeamBattleFlag {
		t.Fatalf("expected team_battle_flag event, got %#v", ev)
	}
	if ev.Data.(TeamBattleFlagData).TeamBattle {
		t.Error("versus lobby should clear the flag")
	}
}

func TestParseLineUnknownLines(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"random noise that matches nothing",
		"Matchmaking: something unrelated",
		"GameEnd: malformed result line",
	}
	for _, line := range lines {
		if ev := ParseLine(line); ev != nil {
			t.Errorf("ParseLine(%q) = %#v, want nil", line, ev)
		}
	}
}

func TestParseFields(t *testing.T) {
	fields := parseFields("a=1 b=two malformed c=")
	if fields["a"] != "1" || fields["b"] != "two" {
		t.Errorf("unexpected fields %#v", fields)
	}
	if _, ok := fields["malformed"]; ok {
		t.Error("pair without = should be skipped")
	}
	if v, ok := fields["c"]; !ok || v != "" {
		t.Errorf("empty value should be kept, got %q ok=%v", v, ok)
	}
}
