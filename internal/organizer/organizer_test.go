package organizer_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"filesorter/internal/faults"
	"filesorter/internal/fsys"
	"filesorter/internal/ledger"
	"filesorter/internal/logging"
	"filesorter/internal/movelog"
	"filesorter/internal/organizer"
	"filesorter/internal/testsupport"
)

const target = "/inbox"

type fixture struct {
	org     *organizer.Organizer
	mem     afero.Fs
	moveLog *movelog.Logger
}

func newFixture(t *testing.T, mutate ...func(*organizer.Options)) *fixture {
	t.Helper()
	mem := afero.NewMemMapFs()
	if err := mem.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir target: %v", err)
	}
	moveLog, err := movelog.New(mem, "/logs")
	if err != nil {
		t.Fatalf("movelog.New: %v", err)
	}
	clock := time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local)
	seq := 0
	opts := organizer.Options{
		FS:         fsys.New(mem),
		Store:      ledger.NewMemoryStore(),
		MoveLog:    moveLog,
		Logger:     logging.NewNop(),
		SkipHidden: true,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
		NewID: func() string {
			seq++
			return fmt.Sprintf("run-%d", seq)
		},
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	org := organizer.New(opts)
	if err := org.SetTargetDirectory(target); err != nil {
		t.Fatalf("SetTargetDirectory: %v", err)
	}
	return &fixture{org: org, mem: mem, moveLog: moveLog}
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	testsupport.WriteContent(t, f.mem, filepath.Join(target, rel), content)
}

func (f *fixture) organize(t *testing.T) *organizer.OrganizeResult {
	t.Helper()
	result, err := f.org.Organize(context.Background(), organizer.OrganizeOptions{})
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	return result
}

func TestPreviewGroupsFilesByCategory(t *testing.T) {
	f := newFixture(t)
	f.write(t, "b.PDF", "b")
	f.write(t, "a.jpg", "a")
	f.write(t, "C.JPEG", "c")
	f.write(t, "notes", "n")
	f.write(t, ".bashrc", "hidden")
	f.write(t, "sub/inner.jpg", "nested")

	preview, err := f.org.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if preview.Total != 4 {
		t.Fatalf("expected 4 files, got %d", preview.Total)
	}
	if strings.Join(preview.Categories, ",") != "Documents,Images,Miscellaneous" {
		t.Fatalf("unexpected categories %v", preview.Categories)
	}
	images := preview.Files["Images"]
	if len(images) != 2 || images[0].Name != "C.JPEG" || images[1].Name != "a.jpg" {
		t.Fatalf("unexpected images %+v", images)
	}
	if images[0].Ext != ".jpeg" || images[0].Path != "/inbox/C.JPEG" {
		t.Fatalf("unexpected entry %+v", images[0])
	}
	if testsupport.Exists(t, f.mem, "/inbox/Images") {
		t.Fatal("preview must not create folders")
	}
}

func TestOrganizeThenUndoRestoresLayout(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.jpg", "a")
	f.write(t, "b.pdf", "b")

	result := f.organize(t)
	if !result.Success || result.Outcome != organizer.OutcomeOrganized || result.Moved != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Message != "Successfully organized 2 files into 2 categories" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if testsupport.ReadContent(t, f.mem, "/inbox/Images/a.jpg") != "a" || testsupport.ReadContent(t, f.mem, "/inbox/Documents/b.pdf") != "b" {
		t.Fatal("files not in category folders")
	}
	if !f.org.CanUndo(context.Background()) {
		t.Fatal("expected undo to be available")
	}

	undo, err := f.org.Undo(context.Background())
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !undo.Success || undo.Restored != 2 {
		t.Fatalf("unexpected undo result %+v", undo)
	}
	if got := testsupport.ListDir(t, f.mem, target); strings.Join(got, ",") != "a.jpg,b.pdf" {
		t.Fatalf("expected only the original files, got %v", got)
	}
	if len(undo.RemovedDirs) != 2 {
		t.Fatalf("expected both category folders removed, got %v", undo.RemovedDirs)
	}
}

func TestOrganizeTwiceReportsNothingToDo(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.jpg", "a")
	f.write(t, "song.mp3", "s")
	f.organize(t)

	second := f.organize(t)
	if second.Outcome != organizer.OutcomeNothingToDo || second.Success || second.Total != 0 {
		t.Fatalf("expected nothing to do, got %+v", second)
	}
	if second.Message != "No files to organize" {
		t.Fatalf("unexpected message %q", second.Message)
	}
	if !f.org.CanUndo(context.Background()) {
		t.Fatal("an empty run must not discard the previous run's undo data")
	}
}

func TestUndoTwiceReportsNothingToUndo(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.jpg", "a")
	f.organize(t)
	if _, err := f.org.Undo(context.Background()); err != nil {
		t.Fatalf("first undo: %v", err)
	}
	result, err := f.org.Undo(context.Background())
	if !errors.Is(err, faults.ErrUndoState) {
		t.Fatalf("expected undo state error, got %v", err)
	}
	if result.Success || result.Message != "No operations to undo" {
		t.Fatalf("unexpected result %+v", result)
	}
	if f.org.CanUndo(context.Background()) {
		t.Fatal("expected CanUndo false after undo")
	}
}

func TestCustomCategory(t *testing.T) {
	f := newFixture(t)
	if err := f.org.AddCustomCategory("Fonts", []string{".ttf"}); err != nil {
		t.Fatalf("AddCustomCategory: %v", err)
	}
	f.write(t, "x.ttf", "font")
	f.organize(t)
	if !testsupport.Exists(t, f.mem, "/inbox/Fonts/x.ttf") {
		t.Fatal("expected x.ttf in Fonts")
	}
}

func TestCustomCategoryOverridesBuiltin(t *testing.T) {
	f := newFixture(t)
	if err := f.org.AddCustomCategory("Data", []string{".CSV"}); err != nil {
		t.Fatalf("AddCustomCategory: %v", err)
	}
	if got := f.org.Rules().CategoryFor("report.csv"); got != "Data" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}

func TestAddCustomCategoryRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct {
		name string
		exts []string
	}{
		{"Fonts", []string{"ttf"}},
		{"Fonts", []string{"."}},
		{"", []string{".ttf"}},
		{"a/b", []string{".ttf"}},
	} {
		if err := f.org.AddCustomCategory(tc.name, tc.exts); !errors.Is(err, faults.ErrInvalidCategory) {
			t.Fatalf("AddCustomCategory(%q, %v): expected invalid category, got %v", tc.name, tc.exts, err)
		}
	}
}

func TestConflictIsRenamedAndLogged(t *testing.T) {
	f := newFixture(t)
	f.write(t, "Images/photo.jpg", "existing")
	f.write(t, "photo.jpg", "incoming")

	result := f.organize(t)
	if result.Moved != 1 || result.Records[0].Destination != "/inbox/Images/photo (1).jpg" {
		t.Fatalf("unexpected records %+v", result.Records)
	}
	if testsupport.ReadContent(t, f.mem, "/inbox/Images/photo.jpg") != "existing" {
		t.Fatal("existing file overwritten")
	}
	if testsupport.ReadContent(t, f.mem, "/inbox/Images/photo (1).jpg") != "incoming" {
		t.Fatal("incoming file missing")
	}
	text := testsupport.ReadContent(t, f.mem, f.moveLog.TextPath())
	if !strings.Contains(text, "MOVE: /inbox/photo.jpg -> /inbox/Images/photo (1).jpg (success)") {
		t.Fatalf("move log missing conflict line:\n%s", text)
	}
	csv := testsupport.ReadContent(t, f.mem, f.moveLog.CSVPath())
	if !strings.Contains(csv, "/inbox/photo.jpg,/inbox/Images/photo (1).jpg,move,success") {
		t.Fatalf("csv missing conflict row:\n%s", csv)
	}
}

func TestResolvedDestinationsNeverExistedBefore(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		name := "dup.txt"
		if i > 0 {
			name = fmt.Sprintf("dup (%d).txt", i)
		}
		f.write(t, filepath.Join("Documents", name), "old")
	}
	f.write(t, "dup.txt", "new")
	f.write(t, "other.txt", "new")

	before := map[string]bool{}
	err := afero.Walk(f.mem, target, func(path string, info fs.FileInfo, err error) error {
		if err == nil {
			before[path] = true
		}
		return err
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	result := f.organize(t)
	for _, rec := range result.Records {
		if before[rec.Destination] {
			t.Fatalf("destination %s existed before the move", rec.Destination)
		}
	}
	if result.Records[0].Destination != "/inbox/Documents/dup (3).txt" {
		t.Fatalf("unexpected destination %s", result.Records[0].Destination)
	}
}

type failingFS struct {
	*fsys.Afero
	fail string
}

func (f failingFS) Move(src, dst string) error {
	if filepath.Base(src) == f.fail {
		return &fs.PathError{Op: "rename", Path: src, Err: fs.ErrPermission}
	}
	return f.Afero.Move(src, dst)
}

func TestPerFileFailureDoesNotStopRun(t *testing.T) {
	f := newFixture(t, func(o *organizer.Options) {
		o.FS = failingFS{Afero: o.FS.(*fsys.Afero), fail: "b.pdf"}
	})
	f.write(t, "a.jpg", "a")
	f.write(t, "b.pdf", "b")
	f.write(t, "c.mp3", "c")

	result := f.organize(t)
	if !result.Success || result.Moved != 2 || result.Failed != 1 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if result.Message != "Organized 2 files with 1 failures" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "b.pdf: ") {
		t.Fatalf("unexpected error details %v", result.Errors)
	}
	if result.Counts["Documents"].Failed != 1 || result.Counts["Audio"].Moved != 1 {
		t.Fatalf("unexpected per-category counts %+v", result.Counts)
	}
	if !testsupport.Exists(t, f.mem, "/inbox/b.pdf") {
		t.Fatal("failed file should stay in place")
	}
	text := testsupport.ReadContent(t, f.mem, f.moveLog.TextPath())
	if !strings.Contains(text, "MOVE: /inbox/b.pdf -> /inbox/Documents/b.pdf (failed)") || !strings.Contains(text, "ERROR: Failed to move b.pdf") {
		t.Fatalf("failure not logged:\n%s", text)
	}

	undo, err := f.org.Undo(context.Background())
	if err != nil || undo.Restored != 2 {
		t.Fatalf("undo should reverse only successful moves: %+v %v", undo, err)
	}
}

func TestAllFailuresReportFailedOutcome(t *testing.T) {
	f := newFixture(t, func(o *organizer.Options) {
		o.FS = failingFS{Afero: o.FS.(*fsys.Afero), fail: "a.jpg"}
	})
	f.write(t, "a.jpg", "a")
	result := f.organize(t)
	if result.Success || result.Outcome != organizer.OutcomeFailed {
		t.Fatalf("expected failed outcome, got %+v", result)
	}
	if f.org.CanUndo(context.Background()) {
		t.Fatal("nothing moved, so nothing to undo")
	}
}

func TestProgressAndDoneCallbacks(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.jpg", "a")
	f.write(t, "b.pdf", "b")
	f.write(t, "c.zip", "c")

	var seen []organizer.Progress
	var done *organizer.OrganizeResult
	result, err := f.org.Organize(context.Background(), organizer.OrganizeOptions{
		Progress: func(p organizer.Progress) { seen = append(seen, p) },
		Done:     func(r *organizer.OrganizeResult) { done = r },
	})
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if len(seen) != 3 || seen[0].Index != 1 || seen[2].Index != 3 || seen[1].Total != 3 {
		t.Fatalf("unexpected progress %+v", seen)
	}
	if seen[1].Name != "b.pdf" || seen[1].Category != "Documents" || !seen[1].Record.Succeeded() {
		t.Fatalf("unexpected progress entry %+v", seen[1])
	}
	if done != result {
		t.Fatal("Done should receive the returned result")
	}
}

func TestCancellationStopsBetweenFiles(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.jpg", "a")
	f.write(t, "b.jpg", "b")
	f.write(t, "c.jpg", "c")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result, err := f.org.Organize(ctx, organizer.OrganizeOptions{
		Progress: func(organizer.Progress) { cancel() },
	})
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if !result.Canceled || result.Moved != 1 || len(result.Records) != 1 {
		t.Fatalf("expected one move before cancel, got %+v", result)
	}
	if !testsupport.Exists(t, f.mem, "/inbox/b.jpg") || !testsupport.Exists(t, f.mem, "/inbox/c.jpg") {
		t.Fatal("remaining files should not be touched")
	}
	if _, err := f.org.Undo(context.Background()); err != nil {
		t.Fatalf("partial run should be undoable: %v", err)
	}
}

func newDiskTarget(t *testing.T, dir string, names ...string) {
	t.Helper()
	osFS := afero.NewOsFs()
	for _, name := range names {
		testsupport.WriteContent(t, osFS, filepath.Join(dir, name), name)
	}
}

func TestCancellationWithSQLiteLedgerIsUndoable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org, err := organizer.NewFromConfig(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	t.Cleanup(func() { _ = org.Close() })
	dir := filepath.Join(testsupport.BaseDir(cfg), "inbox")
	newDiskTarget(t, dir, "a.jpg", "b.jpg", "c.jpg")
	if err := org.SetTargetDirectory(dir); err != nil {
		t.Fatalf("SetTargetDirectory: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result, err := org.Organize(ctx, organizer.OrganizeOptions{
		Progress: func(organizer.Progress) { cancel() },
	})
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if !result.Canceled || result.Moved != 1 {
		t.Fatalf("expected one move before cancel, got %+v", result)
	}
	if !org.CanUndo(context.Background()) {
		t.Fatal("canceled run should be undoable")
	}

	undo, err := org.Undo(context.Background())
	if err != nil || undo.Restored != 1 {
		t.Fatalf("unexpected undo %+v %v", undo, err)
	}
	images := filepath.Join(dir, "Images")
	if len(undo.RemovedDirs) != 1 || undo.RemovedDirs[0] != images {
		t.Fatalf("expected %s removed, got %v", images, undo.RemovedDirs)
	}
	if _, err := os.Stat(images); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("category folder should be gone, stat err %v", err)
	}
}

// cancelOnMoveFS cancels the current operation right after a file moves,
// as a signal arriving mid-move would.
type cancelOnMoveFS struct {
	*fsys.Afero
	cancel func()
}

func (f *cancelOnMoveFS) Move(src, dst string) error {
	err := f.Afero.Move(src, dst)
	if f.cancel != nil {
		f.cancel()
	}
	return err
}

func TestSignalDuringMoveKeepsUndoRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	moveFS := &cancelOnMoveFS{Afero: fsys.OS()}
	org := organizer.New(organizer.Options{FS: moveFS, Store: store, LockDir: cfg.LockDir(), SkipHidden: true})
	dir := filepath.Join(testsupport.BaseDir(cfg), "inbox")
	newDiskTarget(t, dir, "a.jpg", "b.pdf")
	if err := org.SetTargetDirectory(dir); err != nil {
		t.Fatalf("SetTargetDirectory: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	moveFS.cancel = cancel
	result, err := org.Organize(ctx, organizer.OrganizeOptions{})
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if !result.Canceled || result.Moved != 1 || len(result.Records) != 1 {
		t.Fatalf("expected the in-flight move to be kept, got %+v", result)
	}
	if !org.CanUndo(context.Background()) {
		t.Fatal("the completed move must stay undoable")
	}

	undoCtx, undoCancel := context.WithCancel(context.Background())
	defer undoCancel()
	moveFS.cancel = undoCancel
	undo, err := org.Undo(undoCtx)
	if err != nil || undo.Restored != 1 {
		t.Fatalf("unexpected undo %+v %v", undo, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.jpg")); err != nil {
		t.Fatalf("a.jpg not restored: %v", err)
	}
	if org.CanUndo(context.Background()) {
		t.Fatal("undo should clear the run even when canceled mid-way")
	}
}

// flakyStore fails the failOn-th AppendMove call.
type flakyStore struct {
	*ledger.MemoryStore
	failOn  int
	appends int
}

func (s *flakyStore) AppendMove(ctx context.Context, runID string, rec ledger.MoveRecord) error {
	s.appends++
	if s.appends == s.failOn {
		return errors.New("disk I/O error")
	}
	return s.MemoryStore.AppendMove(ctx, runID, rec)
}

func TestLedgerWriteFailureStopsAndFinishesRun(t *testing.T) {
	f := newFixture(t, func(o *organizer.Options) {
		o.Store = &flakyStore{MemoryStore: ledger.NewMemoryStore(), failOn: 2}
	})
	f.write(t, "a.jpg", "a")
	f.write(t, "b.jpg", "b")
	f.write(t, "c.jpg", "c")

	var done *organizer.OrganizeResult
	result, err := f.org.Organize(context.Background(), organizer.OrganizeOptions{
		Done: func(r *organizer.OrganizeResult) { done = r },
	})
	if !errors.Is(err, faults.ErrUndoState) {
		t.Fatalf("expected undo state error, got %v", err)
	}
	if result == nil || done != result {
		t.Fatal("partial result should be returned and reported")
	}
	if result.Success || result.Moved != 2 || len(result.Records) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !strings.HasPrefix(result.Message, "Organize stopped after 2 of 3 files") {
		t.Fatalf("unexpected message %q", result.Message)
	}
	want := "b.jpg: moved to /inbox/Images/b.jpg but not recorded for undo"
	if len(result.Errors) != 1 || result.Errors[0] != want {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if !testsupport.Exists(t, f.mem, "/inbox/c.jpg") {
		t.Fatal("no file may move after the ledger failed")
	}
	text := testsupport.ReadContent(t, f.mem, f.moveLog.TextPath())
	if !strings.Contains(text, "MOVE: /inbox/b.jpg -> /inbox/Images/b.jpg (success)") {
		t.Fatalf("unrecorded move missing from move log:\n%s", text)
	}

	run, err := f.org.ActiveRun(context.Background())
	if err != nil || run == nil {
		t.Fatalf("ActiveRun: %+v %v", run, err)
	}
	if run.FinishedAt.IsZero() || len(run.Records) != 1 || len(run.CreatedDirs) != 1 {
		t.Fatalf("run should be finished with what was recorded: %+v", run)
	}
	undo, err := f.org.Undo(context.Background())
	if err != nil || undo.Restored != 1 {
		t.Fatalf("unexpected undo %+v %v", undo, err)
	}
	if !testsupport.Exists(t, f.mem, "/inbox/Images/b.jpg") || len(undo.RemovedDirs) != 0 {
		t.Fatalf("unrecorded file stays put and keeps its folder: %+v", undo)
	}
}

func TestSetTargetDirectoryErrors(t *testing.T) {
	f := newFixture(t)
	f.write(t, "file.txt", "x")
	for _, path := range []string{"/missing", "/inbox/file.txt", " "} {
		if err := f.org.SetTargetDirectory(path); !errors.Is(err, faults.ErrDirectoryNotFound) {
			t.Fatalf("SetTargetDirectory(%q): expected directory not found, got %v", path, err)
		}
	}
	if f.org.Target() != target {
		t.Fatalf("failed calls must keep the previous target, got %q", f.org.Target())
	}
}

func TestOperationsRequireTarget(t *testing.T) {
	org := organizer.New(organizer.Options{FS: fsys.Memory()})
	if _, err := org.Organize(context.Background(), organizer.OrganizeOptions{}); !errors.Is(err, faults.ErrDirectoryNotFound) {
		t.Fatalf("expected directory not found, got %v", err)
	}
	if _, err := org.Preview(context.Background()); !errors.Is(err, faults.ErrDirectoryNotFound) {
		t.Fatalf("expected directory not found, got %v", err)
	}
	if org.CanUndo(context.Background()) {
		t.Fatal("CanUndo should be false without a target")
	}
}

func TestTargetRemovedAfterSelection(t *testing.T) {
	f := newFixture(t)
	if err := f.mem.RemoveAll(target); err != nil {
		t.Fatalf("remove target: %v", err)
	}
	if _, err := f.org.Organize(context.Background(), organizer.OrganizeOptions{}); !errors.Is(err, faults.ErrDirectoryNotFound) {
		t.Fatalf("expected directory not found, got %v", err)
	}
}

func TestLockedTargetIsRefused(t *testing.T) {
	lockDir := t.TempDir()
	f := newFixture(t, func(o *organizer.Options) { o.LockDir = lockDir })
	f.write(t, "a.jpg", "a")

	held := flock.New(organizer.LockPath(lockDir, target))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("take lock: %v %v", ok, err)
	}
	if _, err := f.org.Organize(context.Background(), organizer.OrganizeOptions{}); !errors.Is(err, faults.ErrLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
	if !testsupport.Exists(t, f.mem, "/inbox/a.jpg") {
		t.Fatal("no file may move while locked")
	}
	if err := held.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if result := f.organize(t); result.Moved != 1 {
		t.Fatalf("expected organize after unlock, got %+v", result)
	}
}

func TestRecentLogLines(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.jpg", "a")
	f.organize(t)
	lines, err := f.org.RecentLogLines(10)
	if err != nil {
		t.Fatalf("RecentLogLines: %v", err)
	}
	if len(lines) != 2 || !strings.Contains(lines[0], "CREATE_DIR") || !strings.Contains(lines[1], "MOVE: /inbox/a.jpg") {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestOrganizeOnDisk(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCategory("Fonts", ".ttf"))
	org, err := organizer.NewFromConfig(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	t.Cleanup(func() { _ = org.Close() })

	dir := filepath.Join(testsupport.BaseDir(cfg), "downloads")
	osFS := afero.NewOsFs()
	testsupport.WriteFile(t, osFS, filepath.Join(dir, "a.jpg"), 1024)
	testsupport.WriteFile(t, osFS, filepath.Join(dir, "b.pdf"), 10)
	testsupport.WriteFile(t, osFS, filepath.Join(dir, "font.TTF"), 10)

	if err := org.SetTargetDirectory(dir); err != nil {
		t.Fatalf("SetTargetDirectory: %v", err)
	}
	result, err := org.Organize(context.Background(), organizer.OrganizeOptions{})
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if result.Moved != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	for _, rel := range []string{"Images/a.jpg", "Documents/b.pdf", "Fonts/font.TTF"} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}

	reopened, err := organizer.NewFromConfig(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if err := reopened.SetTargetDirectory(dir); err != nil {
		t.Fatalf("SetTargetDirectory: %v", err)
	}
	if !reopened.CanUndo(context.Background()) {
		t.Fatal("undo data should survive a restart")
	}
	undo, err := reopened.Undo(context.Background())
	if err != nil || undo.Restored != 3 {
		t.Fatalf("unexpected undo %+v %v", undo, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected only the three files back, got %d entries", len(entries))
	}

	history, err := reopened.History(context.Background(), 5)
	if err != nil || len(history) != 1 || history[0].Status != ledger.RunConsumed || history[0].Moved != 3 {
		t.Fatalf("unexpected history %+v %v", history, err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, movelog.CSVFileName)); err != nil {
		t.Fatalf("expected csv log on disk: %v", err)
	}
}
