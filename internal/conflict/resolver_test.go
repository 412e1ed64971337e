package conflict_test

import (
	"errors"
	"fmt"
	"testing"

	"filesorter/internal/conflict"
	"filesorter/internal/faults"
)

type takenSet map[string]bool

func (s takenSet) Exists(path string) (bool, error) {
	return s[path], nil
}

type failingChecker struct{}

func (failingChecker) Exists(string) (bool, error) {
	return false, errors.New("stat exploded")
}

func TestResolveReturnsFreePathUnchanged(t *testing.T) {
	r := conflict.New(takenSet{}, 0)
	got, err := r.Resolve("/t/Images/photo.jpg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "/t/Images/photo.jpg" {
		t.Fatalf("expected unchanged path, got %q", got)
	}
}

func TestResolveAppendsCounterBeforeExtension(t *testing.T) {
	taken := takenSet{
		"/t/Images/photo.jpg":     true,
		"/t/Images/photo (1).jpg": true,
	}
	got, err := conflict.New(taken, 0).Resolve("/t/Images/photo.jpg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "/t/Images/photo (2).jpg" {
		t.Fatalf("expected photo (2).jpg, got %q", got)
	}
}

func TestCandidateNaming(t *testing.T) {
	cases := map[string]string{
		"/t/a.tar.gz":  "/t/a.tar (3).gz",
		"/t/README":    "/t/README (3)",
		"/t/.env":      "/t/.env (3)",
		"/t/Photo.JPG": "/t/Photo (3).JPG",
	}
	for in, want := range cases {
		if got := conflict.Candidate(in, 3); got != want {
			t.Fatalf("Candidate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveGivesUpAfterMaxAttempts(t *testing.T) {
	taken := takenSet{"/t/x.txt": true}
	for n := 1; n <= 5; n++ {
		taken[fmt.Sprintf("/t/x (%d).txt", n)] = true
	}
	_, err := conflict.New(taken, 5).Resolve("/t/x.txt")
	if !errors.Is(err, faults.ErrFileConflict) {
		t.Fatalf("expected ErrFileConflict, got %v", err)
	}
}

func TestResolvePropagatesStatErrors(t *testing.T) {
	_, err := conflict.New(failingChecker{}, 0).Resolve("/t/x.txt")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, faults.ErrFileConflict) {
		t.Fatalf("stat failure must not look like an exhausted resolver: %v", err)
	}
}
