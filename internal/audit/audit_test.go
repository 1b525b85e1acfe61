package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

func entry(i int) core.AuditEntry {
	return core.AuditEntry{
		ID:       fmt.Sprintf("req-%d", i),
		Time:     time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
		Action:   core.AuditActionDenied,
		Username: "ash",
		Path:     "/api/pokemon/5",
		Status:   401,
	}
}

func ids(entries []core.AuditEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestInMemoryAuditor(t *testing.T) {
	a := NewInMemoryAuditor(3)
	for i := 1; i <= 5; i++ {
		if err := a.Log(entry(i)); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all retained", limit: 10, want: []string{"req-3", "req-4", "req-5"}},
		{name: "limited", limit: 2, want: []string{"req-4", "req-5"}},
		{name: "zero", limit: 0, want: []string{}},
		{name: "negative means all", limit: -1, want: []string{"req-3", "req-4", "req-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.GetRecent(tt.limit)
			if err != nil {
				t.Fatalf("GetRecent() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("GetRecent() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	found, err := a.Find(func(e core.AuditEntry) bool { return e.ID != "req-4" }, 1)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if diff := cmp.Diff([]string{"req-5"}, ids(found)); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileAuditor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	a, err := NewFileAuditor(path)
	if err != nil {
		t.Fatalf("NewFileAuditor() error = %v", err)
	}
	want := []core.AuditEntry{entry(1), entry(2)}
	for _, e := range want {
		if err := a.Log(e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []core.AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e core.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %q is not an audit entry: %v", scanner.Text(), err)
		}
		got = append(got, e)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("file entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFileAuditor_Find(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	a, err := NewFileAuditor(path)
	if err != nil {
		t.Fatalf("NewFileAuditor() error = %v", err)
	}
	defer a.Close()

	for i := 1; i <= 5; i++ {
		if err := a.Log(entry(i)); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}
	// a torn line from a crashed writer must not hide the entries after it
	if _, err := a.file.WriteString("{\"id\": \"req-\n"); err != nil {
		t.Fatal(err)
	}
	if err := a.Log(entry(6)); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	recent, err := a.GetRecent(2)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if diff := cmp.Diff([]string{"req-5", "req-6"}, ids(recent)); diff != "" {
		t.Errorf("GetRecent() mismatch (-want +got):\n%s", diff)
	}

	all, err := a.GetRecent(-1)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(all) != 6 {
		t.Errorf("GetRecent(-1) returned %d entries, want 6", len(all))
	}

	found, err := a.Find(func(e core.AuditEntry) bool { return e.ID == "req-3" }, 10)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if diff := cmp.Diff([]string{"req-3"}, ids(found)); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileAuditor_ReadsEarlierRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	first, err := NewFileAuditor(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Log(entry(1)); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := NewFileAuditor(path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	if err := second.Log(entry(2)); err != nil {
		t.Fatal(err)
	}

	got, err := second.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if diff := cmp.Diff([]string{"req-1", "req-2"}, ids(got)); diff != "" {
		t.Errorf("GetRecent() mismatch (-want +got):\n%s", diff)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AuditConfig
		want    string
		wantErr bool
	}{
		{name: "disabled", cfg: config.AuditConfig{Type: TypeFile}, want: "*audit.NoopAuditor"},
		{name: "memory", cfg: config.AuditConfig{Enabled: true, Type: TypeMemory}, want: "*audit.InMemoryAuditor"},
		{name: "file", cfg: config.AuditConfig{Enabled: true, Type: TypeFile, Path: filepath.Join(t.TempDir(), "a.log")}, want: "*audit.FileAuditor"},
		{name: "unknown", cfg: config.AuditConfig{Enabled: true, Type: "kafka"}, wantErr: true},
		{name: "bad file", cfg: config.AuditConfig{Enabled: true, Type: TypeFile, Path: filepath.Join(t.TempDir(), "missing", "a.log")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("New() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer a.Close()
			if got := fmt.Sprintf("%T", a); got != tt.want {
				t.Errorf("New() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("") != "" {
		t.Error("Fingerprint(\"\") should be empty")
	}
	a, b := Fingerprint("token-a"), Fingerprint("token-b")
	if a == b || a == "" {
		t.Errorf("fingerprints should be distinct and non-empty: %q %q", a, b)
	}
	if a != Fingerprint("token-a") {
		t.Error("Fingerprint is not deterministic")
	}
}
