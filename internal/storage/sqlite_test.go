package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/grimkor/fs-log-parser/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertMatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := &domain.MatchRecord{
		MatchID: "abc123", PlayerRank: "Gold1", OppName: "Ken", MatchType: domain.MatchRanked,
	}
	id, err := store.UpsertMatch(ctx, first)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if id != "abc123" {
		t.Fatalf("id = %q, want abc123", id)
	}

	// A later duplicate with a different payload must not overwrite
	second := &domain.MatchRecord{
		MatchID: "abc123", PlayerRank: "Silver9", OppName: "Impostor", MatchType: domain.MatchCasual,
	}
	if _, err := store.UpsertMatch(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.GetMatch(ctx, "abc123")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if got.PlayerRank != "Gold1" || got.OppName != "Ken" || got.MatchType != domain.MatchRanked {
		t.Errorf("existing row should win, got %#v", got)
	}
}

func TestInsertGameDuplicateIsDropped(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.UpsertMatch(ctx, &domain.MatchRecord{MatchID: "m1", MatchType: domain.MatchRanked}); err != nil {
		t.Fatalf("upsert match: %v", err)
	}

	game := &domain.GameRecord{
		MatchID: "m1", PlayerCharacter: "Ryu", OppCharacter: "Akuma", PlayerScore: "2", OppScore: "1",
	}
	if err := store.InsertGame(ctx, game); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := store.InsertGame(ctx, game); err != nil {
		t.Fatalf("duplicate insert should be benign: %v", err)
	}

	matches, err := store.RecentMatches(ctx, 10)
	if err != nil {
		t.Fatalf("recent matches: %v", err)
	}
	if len(matches) != 1 || len(matches[0].Games) != 1 {
		t.Fatalf("expected 1 match with 1 game, got %#v", matches)
	}
}

func TestInsertGameCreatesPlaceholderMatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	game := &domain.GameRecord{
		MatchID: "orphan", PlayerCharacter: "Grave", OppCharacter: "Jaina", PlayerScore: "3", OppScore: "0",
	}
	if err := store.InsertGame(ctx, game); err != nil {
		t.Fatalf("insert game without match: %v", err)
	}

	got, err := store.GetMatch(ctx, "orphan")
	if err != nil {
		t.Fatalf("placeholder match row should exist: %v", err)
	}
	if got.OppName != "" || got.MatchType != "" {
		t.Errorf("placeholder should be id-only, got %#v", got)
	}

	// A later match upsert enriches nothing: the placeholder row wins.
	// (Enrichment is not required by the write path; the original behaves
	// the same way.)
	if _, err := store.UpsertMatch(ctx, &domain.MatchRecord{MatchID: "orphan", OppName: "Ken"}); err != nil {
		t.Fatalf("upsert after placeholder: %v", err)
	}
	got, err = store.GetMatch(ctx, "orphan")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if got.OppName != "" {
		t.Errorf("placeholder row should win, got %#v", got)
	}
}

func insertMatchWithGames(t *testing.T, store *Store, id string, matchType domain.MatchType, rank string, ts time.Time, scores [][2]string) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.UpsertMatch(ctx, &domain.MatchRecord{
		MatchID: id, MatchType: matchType, PlayerRank: rank, Timestamp: ts,
	}); err != nil {
		t.Fatalf("upsert match %s: %v", id, err)
	}
	for i, s := range scores {
		err := store.InsertGame(ctx, &domain.GameRecord{
			MatchID:         id,
			PlayerCharacter: "Char" + string(rune('A'+i)),
			OppCharacter:    "Opp" + string(rune('A'+i)),
			PlayerScore:     s[0],
			OppScore:        s[1],
		})
		if err != nil {
			t.Fatalf("insert game for %s: %v", id, err)
		}
	}
}

func TestWinLossSummary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Now()
	old := now.AddDate(0, 0, -40)

	// Ranked: one recent win, one old loss, one tie
	insertMatchWithGames(t, store, "r-win", domain.MatchRanked, "Gold1", now, [][2]string{{"2", "0"}, {"1", "2"}, {"2", "1"}})
	insertMatchWithGames(t, store, "r-loss", domain.MatchRanked, "Gold3", old, [][2]string{{"0", "2"}})
	insertMatchWithGames(t, store, "r-tie", domain.MatchRanked, "Gold2", now, [][2]string{{"2", "0"}, {"0", "2"}})

	// Casual: one win; plus a zero-game match that must be excluded
	insertMatchWithGames(t, store, "c-win", domain.MatchCasual, "", now, [][2]string{{"3", "1"}})
	if _, err := store.UpsertMatch(ctx, &domain.MatchRecord{MatchID: "c-empty", MatchType: domain.MatchCasual, Timestamp: now.Add(time.Hour)}); err != nil {
		t.Fatalf("upsert empty match: %v", err)
	}

	summary, err := store.WinLossSummary(ctx)
	if err != nil {
		t.Fatalf("win/loss summary: %v", err)
	}

	byType := make(map[domain.MatchType]domain.WinLossSummary)
	for _, s := range summary {
		byType[s.MatchType] = s
	}

	ranked, ok := byType[domain.MatchRanked]
	if !ok {
		t.Fatalf("missing ranked summary: %#v", summary)
	}
	if ranked.Total != 3 {
		t.Errorf("ranked total = %d, want 3", ranked.Total)
	}
	if ranked.Wins != 1 || ranked.Losses != 1 {
		t.Errorf("ranked wins/losses = %d/%d, want 1/1 (tie counts as neither)", ranked.Wins, ranked.Losses)
	}
	if ranked.Wins30 != 1 || ranked.Losses30 != 0 {
		t.Errorf("ranked 30-day wins/losses = %d/%d, want 1/0", ranked.Wins30, ranked.Losses30)
	}
	if ranked.BestRank != "Gold1" {
		t.Errorf("ranked best rank = %q, want Gold1", ranked.BestRank)
	}
	if ranked.FirstRank != "Gold3" {
		t.Errorf("ranked first rank = %q, want Gold3 (earliest match)", ranked.FirstRank)
	}

	casual, ok := byType[domain.MatchCasual]
	if !ok {
		t.Fatalf("missing casual summary: %#v", summary)
	}
	if casual.Total != 1 || casual.Wins != 1 || casual.Losses != 0 {
		t.Errorf("casual = %d/%d/%d, want 1/1/0 (zero-game match excluded)", casual.Total, casual.Wins, casual.Losses)
	}
}

func TestSetConfigLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.SetConfig(ctx, map[string]string{"playerName": "Rei", "playerRank": "Gold1"}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := store.SetConfig(ctx, map[string]string{"playerName": "Kei"}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	settings, err := store.GetConfig(ctx)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if settings["playerName"] != "Kei" {
		t.Errorf("playerName = %q, want Kei", settings["playerName"])
	}
	if settings["playerRank"] != "Gold1" {
		t.Errorf("playerRank = %q, want Gold1", settings["playerRank"])
	}
}

func TestRecentMatchesOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	insertMatchWithGames(t, store, "older", domain.MatchRanked, "Gold2", base, [][2]string{{"2", "0"}})
	insertMatchWithGames(t, store, "newer", domain.MatchRanked, "Gold1", base.Add(time.Minute), [][2]string{{"2", "1"}})

	matches, err := store.RecentMatches(ctx, 10)
	if err != nil {
		t.Fatalf("recent matches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].MatchID != "newer" || matches[1].MatchID != "older" {
		t.Errorf("expected newest first, got %q then %q", matches[0].MatchID, matches[1].MatchID)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		t.Fatalf("context: %v", ctxErr)
	}
}
