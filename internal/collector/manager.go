package collector

import (
	"context"
	"log"
	"sync"

	"github.com/grimkor/fs-log-parser/internal/config"
	"github.com/grimkor/fs-log-parser/internal/domain"
	"github.com/grimkor/fs-log-parser/internal/notify"
	"github.com/grimkor/fs-log-parser/internal/storage"
)

// Manager wires the tailer, classifiers, tracker, store and notification
// sink together. Lines are processed one at a time in arrival order; the
// resulting persistence effects are executed by a single writer goroutine so
// a game insert can never overtake its match row.
type Manager struct {
	cfg     *config.Config
	store   *storage.Store
	sink    notify.Sink
	tracker *Tracker
	tailer  *Tailer

	writes  chan Effect
	done    chan struct{}
	lineWG  sync.WaitGroup
	writeWG sync.WaitGroup
}

// NewManager creates a new manager
func NewManager(cfg *config.Config, store *storage.Store, sink notify.Sink) *Manager {
	return &Manager{
		cfg:     cfg,
		store:   store,
		sink:    sink,
		tracker: NewTracker(),
		tailer:  NewTailer(cfg.Log.Path, cfg.Log.PollInterval),
		writes:  make(chan Effect, 100),
		done:    make(chan struct{}),
	}
}

// Start seeds the tracker from persisted config and begins tailing. An empty
// or missing playerName degrades gracefully: attribution then relies on the
// opponent name until an authentication line arrives.
func (m *Manager) Start(ctx context.Context) error {
	settings, err := m.store.GetConfig(ctx)
	if err != nil {
		log.Printf("Warning: reading persisted config: %v", err)
	} else if name := settings["playerName"]; name != "" {
		m.tracker.SetPlayerName(name)
	}

	if err := m.tailer.Start(); err != nil {
		return err
	}

	m.writeWG.Add(1)
	go m.writeLoop(ctx)

	m.lineWG.Add(1)
	go m.lineLoop()

	log.Printf("Tracking %s", m.cfg.Log.Path)
	return nil
}

// Stop stops tailing and drains pending writes
func (m *Manager) Stop() {
	close(m.done)
	m.tailer.Stop()
	m.lineWG.Wait()
	close(m.writes)
	m.writeWG.Wait()
	log.Printf("Manager: shutdown complete")
}

func (m *Manager) lineLoop() {
	defer m.lineWG.Done()
	for {
		select {
		case <-m.done:
			return
		case line := <-m.tailer.Lines:
			m.processLine(line)
		case err := <-m.tailer.Errors:
			log.Printf("Tailer error: %v", err)
		}
	}
}

// processLine classifies one line, folds it into the tracker and dispatches
// the effects. Any panic is confined to this line; a malformed line must
// never stop ingestion or corrupt subsequent state.
func (m *Manager) processLine(line string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Line processing panic (%q): %v", line, r)
		}
	}()

	for _, effect := range m.tracker.Handle(ParseLine(line)) {
		switch e := effect.(type) {
		case PushPlayer:
			m.sink.Publish(domain.PlayerUpdate{Kind: domain.KindPlayerUpdate, Name: e.Name})
		case PushRank:
			m.sink.Publish(domain.RankUpdate{Kind: domain.KindRankUpdate, League: e.League, Rank: e.Rank, Stars: e.Stars})
		default:
			// Persistence effects and the live-result push that depends on
			// them keep their emission order through the write queue.
			select {
			case m.writes <- effect:
			case <-m.done:
				return
			}
		}
	}
}

// writeLoop executes persistence effects in order. Failures are logged and
// the effect abandoned; tracker state is unaffected so later writes can
// still succeed.
func (m *Manager) writeLoop(ctx context.Context) {
	defer m.writeWG.Done()

	gameOK := false
	for effect := range m.writes {
		switch e := effect.(type) {
		case PersistPlayerName:
			if err := m.store.SetConfig(ctx, map[string]string{"playerName": e.Name}); err != nil {
				log.Printf("Persisting player name: %v", err)
			}
		case PersistRank:
			err := m.store.SetConfig(ctx, map[string]string{
				"playerLeague": e.League,
				"playerRank":   e.Rank,
				"playerStars":  e.Stars,
			})
			if err != nil {
				log.Printf("Persisting rank: %v", err)
			}
		case PersistMatch:
			if _, err := m.store.UpsertMatch(ctx, &e.Record); err != nil {
				log.Printf("Persisting match %s: %v", e.Record.MatchID, err)
			}
		case PersistGame:
			err := m.store.InsertGame(ctx, &e.Record)
			gameOK = err == nil
			if err != nil {
				log.Printf("Persisting game for match %s: %v", e.Record.MatchID, err)
			}
		case PushLiveResult:
			// Only announce results that actually reached the store.
			if gameOK {
				m.sink.Publish(domain.LiveResult{
					Kind:            domain.KindLiveResult,
					MatchID:         e.MatchID,
					PlayerCharacter: e.PlayerCharacter,
					OppCharacter:    e.OppCharacter,
					PlayerScore:     e.PlayerScore,
					OppScore:        e.OppScore,
				})
			}
		}
	}
}
