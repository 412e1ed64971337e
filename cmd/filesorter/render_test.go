package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"filesorter/internal/category"
	"filesorter/internal/ledger"
	"filesorter/internal/organizer"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Undo ledger", statusError, "locked", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Undo ledger:", "[ERROR] locked")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Target directory", statusOK, "ok", true)
	if !strings.HasPrefix(got, "\x1b[32m") {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, "\x1b[0m") {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPrintErrorsCapsDetails(t *testing.T) {
	var out bytes.Buffer
	details := []string{"a", "b", "c", "d", "e", "f", "g"}
	printErrors(&out, details, 12)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 5 details and a tail line, got %q", out.String())
	}
	if !strings.Contains(lines[5], "... and 7 more errors") {
		t.Fatalf("unexpected tail %q", lines[5])
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
		if got := confirm(strings.NewReader(input), &out, "Proceed?"); got != want {
			t.Fatalf("confirm(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSummaryLineKinds(t *testing.T) {
	if got := summaryLine(true, true, "partial", true); !strings.HasPrefix(got, "\x1b[33m") {
		t.Fatalf("expected yellow for partial success, got %q", got)
	}
	if got := summaryLine(false, false, "failed", true); !strings.HasPrefix(got, "\x1b[31m") {
		t.Fatalf("expected red for failure, got %q", got)
	}
}

func TestRenderTableFooterAndPadding(t *testing.T) {
	got := renderTable([]string{"Category", "Moved"}, [][]string{{"Images"}}, []columnAlignment{alignLeft, alignRight}, "Total", "3")
	if !strings.Contains(got, "Total") || !strings.Contains(got, "Images") {
		t.Fatalf("unexpected table:\n%s", got)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestRenderCanceledOrganizeResult(t *testing.T) {
	var buf bytes.Buffer
	renderOrganizeResult(&buf, &organizer.OrganizeResult{
		Outcome:  organizer.OutcomeOrganized,
		Success:  true,
		Message:  "Organize canceled: moved 1 of 3 files",
		Counts:   map[string]organizer.CategoryCount{"Images": {Moved: 1}},
		Records:  make([]ledger.MoveRecord, 1),
		Moved:    1,
		Total:    3,
		Canceled: true,
	}, false)
	out := buf.String()
	for _, want := range []string{"Organize canceled: moved 1 of 3 files", "Interrupted after 1 of 3 files"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDescribeOverrides(t *testing.T) {
	if got := describeOverrides(nil); got != "-" {
		t.Fatalf("expected dash for no overrides, got %q", got)
	}
	got := describeOverrides([]category.Override{
		{Extension: ".csv", Previous: "Spreadsheets", Current: "Data"},
		{Extension: ".json", Previous: "Code", Current: "Data"},
	})
	if got != ".csv from Spreadsheets, .json from Code" {
		t.Fatalf("unexpected description %q", got)
	}
}
