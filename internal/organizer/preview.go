package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"filesorter/internal/category"
	"filesorter/internal/faults"
	"filesorter/internal/logging"
)

// FileEntry is a scan-time snapshot of one top-level file.
type FileEntry struct {
	Path     string
	Name     string
	Ext      string
	Size     int64
	ModTime  time.Time
	Category string
}

// Preview groups the files a run would move by destination category.
type Preview struct {
	Target     string
	Files      map[string][]FileEntry
	Categories []string
	Total      int
}

// Preview reports what Organize would do without touching the filesystem.
func (o *Organizer) Preview(ctx context.Context) (*Preview, error) {
	if err := o.requireTarget("preview"); err != nil {
		return nil, err
	}
	entries, err := o.scan(ctx)
	if err != nil {
		return nil, err
	}
	preview := &Preview{Target: o.target, Files: make(map[string][]FileEntry), Total: len(entries)}
	for _, entry := range entries {
		if _, seen := preview.Files[entry.Category]; !seen {
			preview.Categories = append(preview.Categories, entry.Category)
		}
		preview.Files[entry.Category] = append(preview.Files[entry.Category], entry)
	}
	sort.Strings(preview.Categories)
	return preview, nil
}

// scan lists the target's top-level regular files in name order. Directories,
// symlinks, and (when configured) hidden files are skipped.
func (o *Organizer) scan(ctx context.Context) ([]FileEntry, error) {
	logger := logging.WithContext(ctx, o.logger)
	infos, err := o.fs.ReadDir(o.target)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, faults.Wrap(faults.ErrDirectoryNotFound, "organizer", "scan", fmt.Sprintf("Directory does not exist: %s", o.target), err)
		case errors.Is(err, fs.ErrPermission):
			return nil, faults.Wrap(faults.ErrPermission, "organizer", "scan", fmt.Sprintf("Cannot list %s", o.target), err)
		default:
			return nil, faults.Wrap(nil, "organizer", "scan", fmt.Sprintf("Cannot list %s", o.target), err)
		}
	}

	entries := make([]FileEntry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if !info.Mode().IsRegular() {
			continue
		}
		if o.skipHidden && strings.HasPrefix(name, ".") {
			logger.Debug("hidden file skipped", logging.String("name", name))
			continue
		}
		entries = append(entries, FileEntry{
			Path:     filepath.Join(o.target, name),
			Name:     name,
			Ext:      category.Extension(name),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Category: o.rules.CategoryFor(name),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	logger.Debug("scan completed", logging.Int("files", len(entries)), logging.Int("entries", len(infos)))
	return entries, nil
}
