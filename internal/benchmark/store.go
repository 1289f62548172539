package benchmark

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"zap/internal/stats"
)

// BaselineHeader is the first line of every baseline file.
const BaselineHeader = "zap-baseline v1"

// DefaultBaselinePath is used when no path is configured.
const DefaultBaselinePath = ".zap/baseline"

var (
	// ErrInvalidHeader is returned by Load when the file is not a v1 baseline.
	ErrInvalidHeader = errors.New("invalid baseline header")
	// ErrInvalidName is returned for names that cannot be stored or registered.
	ErrInvalidName = errors.New("invalid benchmark name")
)

// Baseline maps benchmark names to their persisted entries. It is not safe
// for concurrent use.
type Baseline struct {
	entries map[string]Entry
	skipped int
}

func NewBaseline() *Baseline {
	return &Baseline{entries: make(map[string]Entry)}
}

// Add records s under name, replacing any previous entry.
func (b *Baseline) Add(name string, s stats.Summary) {
	b.Put(EntryFromSummary(name, s))
}

// Put stores e, replacing any entry with the same name.
func (b *Baseline) Put(e Entry) {
	b.entries[e.Name] = e
}

func (b *Baseline) Find(name string) (Entry, bool) {
	e, ok := b.entries[name]
	return e, ok
}

func (b *Baseline) Len() int { return len(b.entries) }

// Skipped returns how many malformed lines the last Load ignored.
func (b *Baseline) Skipped() int { return b.skipped }

// Entries returns all entries sorted by name.
func (b *Baseline) Entries() []Entry {
	out := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Save writes the baseline to path, creating parent directories.
func (b *Baseline) Save(path string) error {
	entries := b.Entries()
	for _, e := range entries {
		if strings.ContainsAny(e.Name, "|\n\r") || e.Name == "" {
			return fmt.Errorf("%w: %q", ErrInvalidName, e.Name)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	var sb strings.Builder
	sb.WriteString(BaselineHeader)
	sb.WriteByte('\n')
	for _, e := range entries {
		sb.WriteString(e.Name)
		for _, v := range []float64{e.Mean, e.StdDev, e.CILower, e.CIUpper} {
			sb.WriteByte('|')
			sb.WriteString(formatFloat(v))
		}
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write baseline %s: %w", path, err)
	}
	return nil
}

// Load merges the entries stored at path into b. It returns false with a
// nil error when the file does not exist or is empty.
func (b *Baseline) Load(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open baseline %s: %w", path, err)
	}
	defer f.Close()

	b.skipped = 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("failed to read baseline %s: %w", path, err)
		}
		return false, nil
	}
	if strings.TrimRight(scanner.Text(), "\r") != BaselineHeader {
		return false, fmt.Errorf("%s: %w", path, ErrInvalidHeader)
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		e, ok := parseEntry(line)
		if !ok {
			b.skipped++
			continue
		}
		b.Put(e)
	}
	if err := scanner.Err(); err != nil {
		return true, fmt.Errorf("failed to read baseline %s: %w", path, err)
	}
	return true, nil
}

// parseEntry decodes name|mean|std|ci_lower|ci_upper. Fields past the fifth
// are ignored so newer writers can append columns.
func parseEntry(line string) (Entry, bool) {
	fields := strings.Split(line, "|")
	if len(fields) < 5 || fields[0] == "" {
		return Entry{}, false
	}
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return Entry{}, false
		}
		vals[i] = v
	}
	return Entry{
		Name:    fields[0],
		Mean:    vals[0],
		StdDev:  vals[1],
		CILower: vals[2],
		CIUpper: vals[3],
	}, true
}

// formatFloat renders 17 significant digits, enough to round-trip a float64.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}
