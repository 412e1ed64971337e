package preflight

import (
	"context"

	"filesorter/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for cfg. The target directory is checked only
// when one is given.
func RunAll(ctx context.Context, cfg *config.Config, target string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if target != "" {
		results = append(results, CheckDirectoryAccess("Target directory", target))
	}
	results = append(results,
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckLedger(ctx, cfg),
	)
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
