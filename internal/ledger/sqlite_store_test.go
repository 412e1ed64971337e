package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"filesorter/internal/ledger"
	"filesorter/internal/testsupport"
)

func TestSQLiteStoreRoundTripsActiveRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if store.Path() != filepath.Join(cfg.Paths.StateDir, "ledger.db") {
		t.Fatalf("unexpected db path %q", store.Path())
	}
	if run, err := store.ActiveRun(ctx, "/inbox"); err != nil || run != nil {
		t.Fatalf("expected no active run, got %+v %v", run, err)
	}

	started := time.Date(2026, 10, 18, 8, 0, 0, 123456789, time.UTC)
	if err := store.BeginRun(ctx, ledger.Run{ID: "run-1", Target: "/inbox", StartedAt: started}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	records := []ledger.MoveRecord{
		{Seq: 1, Operation: ledger.OperationMove, Source: "/inbox/a.jpg", Destination: "/inbox/Images/a.jpg", Category: "Images", Timestamp: started, Outcome: ledger.OutcomeSuccess},
		{Seq: 2, Operation: ledger.OperationMove, Source: "/inbox/b.txt", Destination: "/inbox/Documents/b.txt", Category: "Documents", Timestamp: started, Outcome: ledger.OutcomeFailed, Error: "permission denied"},
	}
	for _, rec := range records {
		if err := store.AppendMove(ctx, "run-1", rec); err != nil {
			t.Fatalf("AppendMove: %v", err)
		}
	}
	if err := store.FinishRun(ctx, "run-1", started.Add(time.Second), []string{"/inbox/Images"}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err := store.ActiveRun(ctx, "/inbox")
	if err != nil || run == nil {
		t.Fatalf("ActiveRun: %+v %v", run, err)
	}
	if run.ID != "run-1" || !run.StartedAt.Equal(started) || len(run.Records) != 2 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Records[1].Error != "permission denied" || run.Records[0].Category != "Images" {
		t.Fatalf("records not preserved: %+v", run.Records)
	}
	if len(run.CreatedDirs) != 1 || run.CreatedDirs[0] != "/inbox/Images" {
		t.Fatalf("created dirs not preserved: %v", run.CreatedDirs)
	}
}

func TestSQLiteStoreSupersedeAndConsume(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

	if err := store.BeginRun(ctx, ledger.Run{ID: "run-1", Target: "/inbox", StartedAt: base}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.AppendMove(ctx, "run-1", ledger.MoveRecord{Seq: 1, Operation: ledger.OperationMove, Source: "/inbox/a", Destination: "/inbox/Miscellaneous/a", Timestamp: base, Outcome: ledger.OutcomeSuccess}); err != nil {
		t.Fatalf("AppendMove: %v", err)
	}
	if err := store.BeginRun(ctx, ledger.Run{ID: "run-2", Target: "/inbox", StartedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("BeginRun second: %v", err)
	}
	if err := store.BeginRun(ctx, ledger.Run{ID: "other", Target: "/other", StartedAt: base.Add(2 * time.Minute)}); err != nil {
		t.Fatalf("BeginRun other target: %v", err)
	}

	run, err := store.ActiveRun(ctx, "/inbox")
	if err != nil || run == nil || run.ID != "run-2" || len(run.Records) != 0 {
		t.Fatalf("expected run-2 active and empty, got %+v %v", run, err)
	}
	if err := store.ConsumeRun(ctx, "run-2", base.Add(3*time.Minute)); err != nil {
		t.Fatalf("ConsumeRun: %v", err)
	}
	if run, _ := store.ActiveRun(ctx, "/inbox"); run != nil {
		t.Fatalf("expected no active run after consume, got %+v", run)
	}
	if run, _ := store.ActiveRun(ctx, "/other"); run == nil {
		t.Fatal("other target's run should be untouched")
	}

	history, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(history) != 3 || history[0].ID != "other" || history[2].ID != "run-1" {
		t.Fatalf("unexpected history order %+v", history)
	}
	if history[2].Status != ledger.RunSuperseded || history[2].Moved != 1 {
		t.Fatalf("superseded run should keep its counts: %+v", history[2])
	}
	if history[1].Status != ledger.RunConsumed {
		t.Fatalf("expected run-2 consumed: %+v", history[1])
	}
}

func TestSQLiteStoreUnknownRun(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if err := store.FinishRun(context.Background(), "missing", time.Now(), nil); err == nil {
		t.Fatal("expected error finishing unknown run")
	}
}

func TestSQLiteStoreReopenKeepsState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()
	first, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.BeginRun(ctx, ledger.Run{ID: "run-1", Target: "/inbox", StartedAt: time.Now()}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpenStore(t, cfg)
	run, err := second.ActiveRun(ctx, "/inbox")
	if err != nil || run == nil || run.ID != "run-1" {
		t.Fatalf("expected run to survive reopen, got %+v %v", run, err)
	}
}

func TestLedgerWritesSurviveCanceledContext(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	l := ledger.New(store, "/inbox", nil)
	started := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	if err := l.Begin(context.Background(), "run-1", started); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.NoteCreatedDir(ctx, "/inbox/Images"); err != nil {
		t.Fatalf("NoteCreatedDir after cancel: %v", err)
	}
	rec := ledger.MoveRecord{Source: "/inbox/a.jpg", Destination: "/inbox/Images/a.jpg", Category: "Images", Timestamp: started, Outcome: ledger.OutcomeSuccess}
	if _, err := l.Append(ctx, rec); err != nil {
		t.Fatalf("Append after cancel: %v", err)
	}
	if err := l.Finish(ctx, started.Add(time.Second)); err != nil {
		t.Fatalf("Finish after cancel: %v", err)
	}

	run, err := store.ActiveRun(context.Background(), "/inbox")
	if err != nil || run == nil {
		t.Fatalf("ActiveRun: %+v %v", run, err)
	}
	if len(run.Records) != 1 || len(run.CreatedDirs) != 1 || run.FinishedAt.IsZero() {
		t.Fatalf("run not fully recorded: %+v", run)
	}
}

func TestCreatedDirsPersistBeforeFinish(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	l := ledger.New(store, "/inbox", nil)
	ctx := context.Background()
	if err := l.Begin(ctx, "run-1", time.Now()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for _, dir := range []string{"/inbox/Images", "/inbox/Documents"} {
		if err := l.NoteCreatedDir(ctx, dir); err != nil {
			t.Fatalf("NoteCreatedDir(%s): %v", dir, err)
		}
	}

	// A second handle sees the folders without the first run ever finishing.
	reopened := testsupport.MustOpenStore(t, cfg)
	run, err := reopened.ActiveRun(ctx, "/inbox")
	if err != nil || run == nil {
		t.Fatalf("ActiveRun: %+v %v", run, err)
	}
	if len(run.CreatedDirs) != 2 || run.CreatedDirs[1] != "/inbox/Documents" {
		t.Fatalf("unexpected created dirs %v", run.CreatedDirs)
	}
	if err := reopened.SetCreatedDirs(ctx, "missing", nil); err == nil {
		t.Fatal("expected error for unknown run")
	}
}
