// Package rebuild reassembles a OneTab state document from previously
// recovered records. It never touches the extension's storage directory
// before a backup of it exists; the optional destructive clear is the only
// mutation and is gated behind an explicit flag upstream.
package rebuild

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgnsrekt/onetab_rescue/internal/types"
)

// Backup copies every regular file in srcDir into a fresh timestamped
// directory under backupRoot and returns its path. A missing source
// directory is only a warning: the backup directory is still created so the
// caller has a stable path to report.
func Backup(srcDir, backupRoot string) (string, error) {
	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(backupRoot, "onetab_backup_"+stamp)
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	slog.Info("creating backup", "path", backupPath)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		slog.Warn("extension path does not exist, nothing to back up", "path", srcDir)
		return backupPath, nil
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src := filepath.Join(srcDir, e.Name())
		dst := filepath.Join(backupPath, e.Name())
		if err := copyFile(src, dst); err != nil {
			return "", fmt.Errorf("backup %s: %w", e.Name(), err)
		}
	}
	slog.Info("backup completed")
	return backupPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// LoadRecords reads a scanner-produced records JSON file. Any failure here
// aborts reconstruction before mutation.
func LoadRecords(path string) ([]types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}
	var records []types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records file %s: %w", path, err)
	}
	return records, nil
}

// Builder assembles State documents with synthesized identifiers. IDs are
// the current millisecond timestamp plus a counter (group index for groups,
// a run-global sequence for tabs), which keeps them distinct within a run
// but not across runs; each run produces a fresh document, so that is
// sufficient.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder on the system clock.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build groups records by their group label in first-seen order and wraps
// them in the extension's state shape. The "Unknown Group" placeholder maps
// to an empty display name so the extension shows those tabs as ungrouped.
func (b *Builder) Build(records []types.Record) types.State {
	var order []string
	grouped := make(map[string][]types.Record)
	for _, r := range records {
		group := r.Group
		if group == "" {
			group = types.UnnamedGroup
		}
		if _, ok := grouped[group]; !ok {
			order = append(order, group)
		}
		grouped[group] = append(grouped[group], r)
	}

	// The counters are run-global: a per-group index would reset while the
	// clock stands still, colliding across groups built within the same
	// millisecond.
	state := types.State{TabGroups: make([]types.TabGroup, 0, len(order))}
	tabSeq := 0
	for gi, group := range order {
		name := group
		if name == types.UnknownGroup {
			name = ""
		}
		tg := types.TabGroup{
			ID:   fmt.Sprintf("group_%d_%d", b.now().UnixMilli(), gi),
			Name: name,
			Tabs: make([]types.Tab, 0, len(grouped[group])),
		}
		for _, r := range grouped[group] {
			tg.Tabs = append(tg.Tabs, types.Tab{
				ID:    fmt.Sprintf("tab_%d_%d", b.now().UnixMilli(), tabSeq),
				URL:   r.URL,
				Title: r.Title,
			})
			tabSeq++
		}
		state.TabGroups = append(state.TabGroups, tg)
	}
	return state
}

// WriteState writes the state document as indented JSON.
func WriteState(path string, state types.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ClearStore removes the LevelDB data and log files from dir, preserving
// the engine's control and lock files so the browser can reinitialize the
// store. The first removal error aborts; recovery from an unwanted clear
// relies on the backup taken earlier.
func ClearStore(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list store dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !isDataFile(name) || isControlFile(name) {
			continue
		}
		path := filepath.Join(dir, name)
		slog.Info("removing", "file", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	slog.Info("database cleared", "dir", dir)
	return nil
}

func isDataFile(name string) bool {
	switch filepath.Ext(name) {
	case ".ldb", ".log":
		return true
	}
	return false
}

// isControlFile reports whether name is a LevelDB control or lock file.
func isControlFile(name string) bool {
	switch name {
	case "CURRENT", "LOCK", "LOG", "LOG.old":
		return true
	}
	return strings.HasPrefix(name, "MANIFEST-")
}
