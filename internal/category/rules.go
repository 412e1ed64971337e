package category

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"filesorter/internal/faults"
	"filesorter/internal/logging"
)

// Miscellaneous is the fallback category for unmapped extensions.
const Miscellaneous = "Miscellaneous"

var builtin = []Category{
	{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".svg", ".webp", ".ico"}},
	{Name: "Documents", Extensions: []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".pages"}},
	{Name: "Spreadsheets", Extensions: []string{".xls", ".xlsx", ".csv", ".ods"}},
	{Name: "Presentations", Extensions: []string{".ppt", ".pptx", ".odp", ".key"}},
	{Name: "Videos", Extensions: []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v"}},
	{Name: "Audio", Extensions: []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a"}},
	{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz", ".bz2"}},
	{Name: "Code", Extensions: []string{".py", ".js", ".html", ".css", ".java", ".cpp", ".c", ".php", ".rb", ".go"}},
	{Name: "Executables", Extensions: []string{".exe", ".msi", ".dmg", ".pkg", ".deb", ".rpm"}},
}

// Category is a named bucket of extensions.
type Category struct {
	Name       string
	Extensions []string
}

// Override describes an extension that moved from one category to another
// when a custom category was registered.
type Override struct {
	Extension string
	Previous  string
	Current   string
}

// Rules maps extensions to category names. The zero value is not usable; build
// one with Default or New.
type Rules struct {
	byExt  map[string]string
	names  map[string]struct{}
	misc   string
	logger *slog.Logger
}

// New returns an empty rule set whose fallback category is misc.
func New(misc string, logger *slog.Logger) *Rules {
	misc = strings.TrimSpace(misc)
	if misc == "" {
		misc = Miscellaneous
	}
	return &Rules{
		byExt:  make(map[string]string),
		names:  make(map[string]struct{}),
		misc:   misc,
		logger: logging.NewComponentLogger(logger, "category"),
	}
}

// Default returns the built-in rule set.
func Default(logger *slog.Logger) *Rules {
	return WithMiscellaneous(Miscellaneous, logger)
}

// WithMiscellaneous returns the built-in rule set using misc as the fallback.
func WithMiscellaneous(misc string, logger *slog.Logger) *Rules {
	r := New(misc, logger)
	for _, cat := range builtin {
		r.names[cat.Name] = struct{}{}
		for _, ext := range cat.Extensions {
			r.byExt[ext] = cat.Name
		}
	}
	return r
}

// Fallback returns the category used for unmapped extensions.
func (r *Rules) Fallback() string {
	return r.misc
}

// CategoryFor returns the category a file with the given name belongs to.
func (r *Rules) CategoryFor(filename string) string {
	ext := Extension(filename)
	if ext == "" {
		return r.misc
	}
	if name, ok := r.byExt[ext]; ok {
		return name
	}
	return r.misc
}

// AddCategory maps every extension in exts to name, replacing earlier
// mappings for the same extension. The returned overrides list the extensions
// that changed category.
func (r *Rules) AddCategory(name string, exts []string) ([]Override, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(exts) == 0 {
		return nil, invalid(fmt.Sprintf("category %q needs at least one extension", name))
	}
	normalized := make([]string, 0, len(exts))
	for _, raw := range exts {
		ext, err := normalizeExtension(raw)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, ext)
	}

	var overrides []Override
	for _, ext := range normalized {
		if previous, ok := r.byExt[ext]; ok && previous != name {
			overrides = append(overrides, Override{Extension: ext, Previous: previous, Current: name})
			logging.WarnWithContext(r.logger, "extension reassigned to custom category", "category_override",
				logging.String("extension", ext),
				logging.String("previous_category", previous),
				logging.String("category", name),
				logging.String(logging.FieldImpact, "files with this extension now sort into the new category"),
				logging.String(logging.FieldErrorHint, "rename the extension list if the reassignment was unintended"),
			)
		}
		r.byExt[ext] = name
	}
	r.names[name] = struct{}{}
	r.pruneEmpty()
	r.logger.Debug("custom category registered",
		logging.String("category", name),
		logging.String("extensions", strings.Join(normalized, ",")),
	)
	return overrides, nil
}

// IsCategory reports whether name is a category this rule set can produce.
func (r *Rules) IsCategory(name string) bool {
	if name == r.misc {
		return true
	}
	_, ok := r.names[name]
	return ok
}

// Categories lists every category with at least one extension, sorted by name.
// The fallback category is not included.
func (r *Rules) Categories() []Category {
	grouped := make(map[string][]string, len(r.names))
	for ext, name := range r.byExt {
		grouped[name] = append(grouped[name], ext)
	}
	out := make([]Category, 0, len(grouped))
	for name, exts := range grouped {
		sort.Strings(exts)
		out = append(out, Category{Name: name, Extensions: exts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Extension returns the lower-cased extension of filename including the
// leading dot, or "" when there is none. Names consisting of a leading dot
// followed by text (".bashrc") have no extension.
func Extension(filename string) string {
	base := filepath.Base(filename)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	if strings.Trim(base[:idx], ".") == "" {
		return ""
	}
	return lower(base[idx:])
}

func (r *Rules) pruneEmpty() {
	live := make(map[string]struct{}, len(r.names))
	for _, name := range r.byExt {
		live[name] = struct{}{}
	}
	r.names = live
}

func normalizeExtension(raw string) (string, error) {
	ext := strings.TrimSpace(raw)
	switch {
	case ext == "":
		return "", invalid("extension must not be empty")
	case !strings.HasPrefix(ext, "."):
		return "", invalid(fmt.Sprintf("extension %q must begin with '.'", ext))
	case len(ext) == 1:
		return "", invalid("extension must contain characters after '.'")
	case strings.ContainsAny(ext, `/\`) || strings.Contains(ext[1:], "."):
		return "", invalid(fmt.Sprintf("extension %q must be a single suffix", ext))
	}
	return lower(ext), nil
}

func validateName(name string) error {
	switch {
	case name == "":
		return invalid("category name must not be empty")
	case name == "." || name == "..":
		return invalid(fmt.Sprintf("category name %q is reserved", name))
	case strings.ContainsAny(name, `/\`):
		return invalid(fmt.Sprintf("category name %q must not contain path separators", name))
	case strings.HasPrefix(name, "."):
		return invalid(fmt.Sprintf("category name %q must not be hidden", name))
	}
	return nil
}

func invalid(message string) error {
	return faults.Wrap(faults.ErrInvalidCategory, "category", "add category", message, nil)
}

func lower(value string) string {
	return cases.Lower(language.Und).String(value)
}

// DisplayName title-cases a category name for table output.
func DisplayName(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(name)
}
