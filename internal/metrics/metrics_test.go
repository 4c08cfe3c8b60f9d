package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksPointsAndUndos(t *testing.T) {
	rec := NewRecorder()
	rec.RecordPoint("teamA")
	rec.RecordPoint("teamA")
	rec.RecordPoint("teamB")
	rec.RecordUndo("last")
	rec.RecordUndo("team")
	rec.RecordUndo("team")

	if got := rec.Points("teamA"); got != 2 {
		t.Fatalf("expected 2 points for teamA, got %d", got)
	}
	if got := rec.Points("teamB"); got != 1 {
		t.Fatalf("expected 1 point for teamB, got %d", got)
	}
	if got := rec.Undos("last"); got != 1 {
		t.Fatalf("expected 1 last-undo, got %d", got)
	}
	if got := rec.Undos("team"); got != 2 {
		t.Fatalf("expected 2 team-undos, got %d", got)
	}
}

func TestRecorderTracksPersistActivity(t *testing.T) {
	rec := NewRecorder()
	rec.RecordFlush(10*time.Millisecond, nil)
	rec.RecordFlush(15*time.Millisecond, errors.New("disk gone"))
	rec.RecordWriteSkipped()
	rec.RecordCoalesced()
	rec.RecordCoalesced()

	snap := rec.PersistSnapshot()
	if snap.Writes != 1 {
		t.Fatalf("expected 1 write, got %d", snap.Writes)
	}
	if snap.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", snap.Errors)
	}
	if snap.Skipped != 1 {
		t.Fatalf("expected 1 skipped write, got %d", snap.Skipped)
	}
	if snap.Coalesced != 2 {
		t.Fatalf("expected 2 coalesced writes, got %d", snap.Coalesced)
	}
	if snap.LastFlushTime != 15*time.Millisecond {
		t.Fatalf("expected last flush time 15ms, got %s", snap.LastFlushTime)
	}
}

func TestRecorderTracksRestoresBySource(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRestore("runtime")
	rec.RecordRestore("snapshot")
	rec.RecordRestore("runtime")

	if got := rec.Restores("runtime"); got != 2 {
		t.Fatalf("expected 2 runtime restores, got %d", got)
	}
	if got := rec.Restores("snapshot"); got != 1 {
		t.Fatalf("expected 1 snapshot restore, got %d", got)
	}
	if got := rec.Restores("none"); got != 0 {
		t.Fatalf("expected 0 none restores, got %d", got)
	}
}

func TestRecorderTracksWSClients(t *testing.T) {
	rec := NewRecorder()
	rec.WSClientConnected()
	rec.WSClientConnected()
	rec.WSClientDisconnected()

	if got := rec.WSClients(); got != 1 {
		t.Fatalf("expected 1 ws client, got %d", got)
	}

	rec.WSClientDisconnected()
	rec.WSClientDisconnected()
	if got := rec.WSClients(); got != 0 {
		t.Fatalf("expected ws clients to floor at 0, got %d", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordPoint("teamA")
	rec.RecordUndo("last")
	rec.RecordFlush(time.Millisecond, nil)
	rec.RecordWriteSkipped()
	rec.RecordCoalesced()
	rec.RecordRestore("none")
	rec.RecordHTTPRequest("GET", "/match", 200, time.Millisecond)
	rec.WSClientConnected()
	rec.WSClientDisconnected()

	if rec.Points("teamA") != 0 || rec.Undos("last") != 0 || rec.WSClients() != 0 {
		t.Fatal("expected zero counters from nil recorder")
	}
	if snap := rec.PersistSnapshot(); snap != (PersistSnapshot{}) {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}
