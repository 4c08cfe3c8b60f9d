// Package match hosts the application service that owns the single live
// match: the in-memory state, its undo log, and the persistence side.
package match

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	domainmatch "padel-score-service/internal/domain/match"
	"padel-score-service/internal/history"
	"padel-score-service/internal/logging"
	"padel-score-service/internal/matchlog"
	"padel-score-service/internal/metrics"
	"padel-score-service/internal/persist"
	"padel-score-service/internal/scoring"
)

var (
	// ErrUnknownTeam rejects operations naming a team that is not part of the match.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrMatchFinished rejects score taps once a winner is decided.
	ErrMatchFinished = errors.New("match already finished")
	// ErrNothingToUndo rejects undo calls with an empty undo log.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Defaults seed the match a fresh boot starts with.
type Defaults struct {
	LabelA          string
	LabelB          string
	SetsNeededToWin int
}

// Service owns the live match state and serializes every mutation. Writes to
// storage go through the synchronizer while the mutation lock is held, so
// persisted states can never arrive out of order.
type Service struct {
	syncer   *persist.Synchronizer
	log      *matchlog.Log
	logger   *slog.Logger
	metrics  *metrics.Recorder
	defaults Defaults
	now      func() time.Time

	mu        sync.Mutex
	st        domainmatch.State
	hist      *history.Stack
	listeners []func(domainmatch.State)
}

// NewService constructs a Service around its collaborators.
func NewService(syncer *persist.Synchronizer, log *matchlog.Log, logger *slog.Logger, recorder *metrics.Recorder, defaults Defaults) *Service {
	return &Service{
		syncer:   syncer,
		log:      log,
		logger:   logger,
		metrics:  recorder,
		defaults: defaults,
		now:      time.Now,
		hist:     history.NewStack(),
	}
}

// Resume loads the persisted match or starts a fresh one from defaults.
func (s *Service) Resume() domainmatch.State {
	st, source, ok := s.syncer.Restore()
	if !ok {
		st = domainmatch.New(s.defaults.LabelA, s.defaults.LabelB, s.defaults.SetsNeededToWin, s.now())
	}

	s.mu.Lock()
	s.st = st
	s.hist.Clear()
	current := s.st.Clone()
	s.mu.Unlock()

	if ok {
		logging.Info(s.logger, "match resumed",
			logging.FieldMatchID, current.MatchID,
			logging.FieldSource, source,
		)
	} else {
		logging.Info(s.logger, "fresh match started", logging.FieldMatchID, current.MatchID)
		s.syncer.Enqueue(current, true)
	}

	s.notify(current)
	return current
}

// Current returns a copy of the live state.
func (s *Service) Current() domainmatch.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

// Score applies one point for team and schedules persistence. The tap that
// decides the match flushes immediately and lands in the finished-match log.
func (s *Service) Score(team domainmatch.TeamID) (domainmatch.State, error) {
	if !team.Valid() {
		return s.Current(), ErrUnknownTeam
	}

	s.mu.Lock()
	if s.st.Finished() {
		st := s.st.Clone()
		s.mu.Unlock()
		return st, ErrMatchFinished
	}

	s.st = scoring.AddPoint(s.st, team, s.hist, s.now())
	st := s.st.Clone()
	finished := st.Finished()
	s.syncer.Enqueue(st, finished)
	s.mu.Unlock()

	s.metrics.RecordPoint(string(team))
	if finished {
		s.recordFinished(st)
	}
	s.notify(st)
	return st, nil
}

// UndoLast rolls back the most recent point.
func (s *Service) UndoLast() (domainmatch.State, error) {
	s.mu.Lock()
	if s.hist.IsEmpty() {
		st := s.st.Clone()
		s.mu.Unlock()
		return st, ErrNothingToUndo
	}

	s.st = scoring.RemovePoint(s.st, s.hist)
	st := s.st.Clone()
	s.syncer.Enqueue(st, false)
	s.mu.Unlock()

	s.metrics.RecordUndo("last")
	s.notify(st)
	return st, nil
}

// UndoForTeam rolls back team's most recent point advance, replaying the rest
// of the timeline. A history that cannot be attributed leaves the state
// untouched; that is a reachable runtime condition, not an error.
func (s *Service) UndoForTeam(team domainmatch.TeamID) (domainmatch.State, error) {
	if !team.Valid() {
		return s.Current(), ErrUnknownTeam
	}

	s.mu.Lock()
	before := s.st
	s.st = scoring.RemovePointForTeam(s.st, s.hist, team, s.now())
	changed := !s.st.EqualStrict(before)
	st := s.st.Clone()
	if changed {
		s.syncer.Enqueue(st, false)
	}
	s.mu.Unlock()

	if changed {
		s.metrics.RecordUndo("team")
		s.notify(st)
	}
	return st, nil
}

// StartNew abandons the current match and starts a fresh one. Empty fields
// fall back to the boot defaults.
func (s *Service) StartNew(labelA, labelB string, setsNeeded int) domainmatch.State {
	if labelA == "" {
		labelA = s.defaults.LabelA
	}
	if labelB == "" {
		labelB = s.defaults.LabelB
	}
	if setsNeeded <= 0 {
		setsNeeded = s.defaults.SetsNeededToWin
	}

	st := domainmatch.New(labelA, labelB, setsNeeded, s.now())

	s.mu.Lock()
	s.st = st
	s.hist.Clear()
	current := s.st.Clone()
	s.syncer.Enqueue(current, true)
	s.mu.Unlock()

	logging.Info(s.logger, "new match started", logging.FieldMatchID, current.MatchID)
	s.notify(current)
	return current
}

// ClearSaved removes the persisted records; the live match keeps playing and
// re-persists on its next mutation.
func (s *Service) ClearSaved() error {
	return s.syncer.ClearSaved()
}

// Flush commits any pending write now.
func (s *Service) Flush() {
	s.syncer.Flush()
}

// Close flushes outstanding writes.
func (s *Service) Close() error {
	return s.syncer.Close()
}

// PersistStatus reports the synchronizer's recent health.
func (s *Service) PersistStatus() persist.Status {
	return s.syncer.Status()
}

// RecentMatches lists recently finished matches, newest first.
func (s *Service) RecentMatches() []matchlog.Entry {
	if s.log == nil {
		return nil
	}
	return s.log.Recent()
}

// Subscribe registers fn to run after every committed state change.
func (s *Service) Subscribe(fn func(domainmatch.State)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Service) notify(st domainmatch.State) {
	s.mu.Lock()
	listeners := make([]func(domainmatch.State), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st.Clone())
	}
}

func (s *Service) recordFinished(st domainmatch.State) {
	logging.Info(s.logger, "match finished",
		logging.FieldMatchID, st.MatchID,
		logging.FieldTeam, string(st.Winner),
	)
	if s.log == nil {
		return
	}
	if err := s.log.Append(matchlog.FromState(st, s.now())); err != nil {
		logging.Warn(s.logger, "finished match not logged", "error", err, logging.FieldMatchID, st.MatchID)
	}
}
