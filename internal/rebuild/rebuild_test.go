package rebuild

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/onetab_rescue/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestBackupCopiesRegularFiles(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "000001.ldb", "data")
	writeFile(t, src, "CURRENT", "MANIFEST-000002")
	if err := os.Mkdir(filepath.Join(src, "lost"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	root := t.TempDir()
	backupPath, err := Backup(src, root)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if !strings.HasPrefix(filepath.Base(backupPath), "onetab_backup_") {
		t.Fatalf("backup dir %q missing timestamp prefix", backupPath)
	}

	got, err := os.ReadFile(filepath.Join(backupPath, "000001.ldb"))
	if err != nil {
		t.Fatalf("backup missing data file: %v", err)
	}
	if string(got) != "data" {
		t.Fatalf("backup content = %q, want %q", got, "data")
	}
	if _, err := os.Stat(filepath.Join(backupPath, "CURRENT")); err != nil {
		t.Fatalf("backup missing CURRENT: %v", err)
	}
	if _, err := os.Stat(filepath.Join(backupPath, "lost")); !os.IsNotExist(err) {
		t.Fatal("directories must not be copied")
	}

	// The source is untouched.
	if _, err := os.Stat(filepath.Join(src, "000001.ldb")); err != nil {
		t.Fatalf("source mutated by backup: %v", err)
	}
}

func TestBackupMissingSource(t *testing.T) {
	root := t.TempDir()
	backupPath, err := Backup(filepath.Join(root, "nope"), root)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if _, err := os.Stat(backupPath); err != nil {
		t.Fatalf("backup dir not created: %v", err)
	}
}

func TestLoadRecordsErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadRecords(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("LoadRecords() = nil error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, dir, "bad.json", "{not json")
	if _, err := LoadRecords(bad); err == nil {
		t.Fatal("LoadRecords() = nil error for malformed JSON")
	}
}

func TestBuildGroupsAndIDs(t *testing.T) {
	records := []types.Record{
		{URL: "http://a", Title: "A", Group: "G1"},
		{URL: "http://b", Title: "", Group: "G1"},
	}
	b := &Builder{now: func() time.Time { return time.UnixMilli(1700000000000) }}
	state := b.Build(records)

	if len(state.TabGroups) != 1 {
		t.Fatalf("got %d groups, want 1", len(state.TabGroups))
	}
	group := state.TabGroups[0]
	if group.Name != "G1" {
		t.Fatalf("group name = %q, want G1", group.Name)
	}
	if len(group.Tabs) != 2 {
		t.Fatalf("got %d tabs, want 2", len(group.Tabs))
	}
	if group.Tabs[0].URL != "http://a" || group.Tabs[0].Title != "A" {
		t.Fatalf("unexpected first tab: %+v", group.Tabs[0])
	}
	if group.Tabs[1].URL != "http://b" || group.Tabs[1].Title != "" {
		t.Fatalf("unexpected second tab: %+v", group.Tabs[1])
	}
	if group.Tabs[0].ID == group.Tabs[1].ID {
		t.Fatalf("tab ids not distinct: %q", group.Tabs[0].ID)
	}
	if group.ID == "" || !strings.HasPrefix(group.ID, "group_") {
		t.Fatalf("group id = %q", group.ID)
	}
}

func TestBuildPlaceholderGroupUnnamed(t *testing.T) {
	b := NewBuilder()
	state := b.Build([]types.Record{{URL: "http://x", Group: types.UnknownGroup}})
	if len(state.TabGroups) != 1 {
		t.Fatalf("got %d groups, want 1", len(state.TabGroups))
	}
	if state.TabGroups[0].Name != "" {
		t.Fatalf("placeholder group name = %q, want empty", state.TabGroups[0].Name)
	}
}

func TestBuildDistinctIDsAcrossGroups(t *testing.T) {
	// A frozen clock forces the counters to carry uniqueness alone; the
	// first tab of each group is where a per-group index would collide.
	b := &Builder{now: func() time.Time { return time.UnixMilli(42) }}
	state := b.Build([]types.Record{
		{URL: "http://a", Group: "G1"},
		{URL: "http://b", Group: "G2"},
		{URL: "http://c", Group: "G2"},
		{URL: "http://d", Group: "G3"},
	})
	ids := make(map[string]bool)
	for _, g := range state.TabGroups {
		if ids[g.ID] {
			t.Fatalf("duplicate group id %q", g.ID)
		}
		ids[g.ID] = true
		for _, tab := range g.Tabs {
			if ids[tab.ID] {
				t.Fatalf("duplicate tab id %q", tab.ID)
			}
			ids[tab.ID] = true
		}
	}
	if len(ids) != 7 {
		t.Fatalf("got %d distinct ids, want 7", len(ids))
	}
}

func TestBuildPreservesGroupOrder(t *testing.T) {
	state := NewBuilder().Build([]types.Record{
		{URL: "http://1", Group: "Later"},
		{URL: "http://2", Group: "Sooner"},
		{URL: "http://3", Group: "Later"},
	})
	if len(state.TabGroups) != 2 {
		t.Fatalf("got %d groups, want 2", len(state.TabGroups))
	}
	if state.TabGroups[0].Name != "Later" || state.TabGroups[1].Name != "Sooner" {
		t.Fatalf("group order = %q, %q", state.TabGroups[0].Name, state.TabGroups[1].Name)
	}
	if len(state.TabGroups[0].Tabs) != 2 {
		t.Fatalf("first group has %d tabs, want 2", len(state.TabGroups[0].Tabs))
	}
}

func TestWriteStateShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onetab_state.json")
	state := types.State{TabGroups: []types.TabGroup{{ID: "group_1_0", Name: "G", Tabs: []types.Tab{{ID: "tab_1_0", URL: "http://a", Title: "A"}}}}}
	if err := WriteState(path, state); err != nil {
		t.Fatalf("WriteState() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := doc["tabGroups"]; !ok {
		t.Fatalf("state document missing tabGroups key: %s", data)
	}
}

func TestClearStorePreservesControlFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000001.ldb", "000002.log", "CURRENT", "LOCK", "LOG", "MANIFEST-000003"} {
		writeFile(t, dir, name, "x")
	}

	if err := ClearStore(dir); err != nil {
		t.Fatalf("ClearStore() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	want := map[string]bool{"CURRENT": true, "LOCK": true, "LOG": true, "MANIFEST-000003": true}
	if len(left) != len(want) {
		t.Fatalf("remaining files = %v", left)
	}
	for _, name := range left {
		if !want[name] {
			t.Fatalf("unexpected survivor %q", name)
		}
	}
}

func TestClearStoreMissingDir(t *testing.T) {
	if err := ClearStore(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("ClearStore() = nil error for missing dir")
	}
}
