package audit

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

// maxLineBytes bounds a single JSON line when the file is read back.
const maxLineBytes = 1 << 20

var (
	_ core.Auditor     = (*FileAuditor)(nil)
	_ core.AuditReader = (*FileAuditor)(nil)
)

// FileAuditor appends login and denial entries to a JSON lines file and answers
// queries by scanning it. Entries written by earlier runs are included.
type FileAuditor struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *json.Encoder
}

func NewFileAuditor(path string) (*FileAuditor, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit file %q: %w", path, err)
	}
	return &FileAuditor{
		path:    path,
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (f *FileAuditor) Log(entry core.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.encoder.Encode(entry); err != nil {
		return fmt.Errorf("appending %s entry %q to %q: %w", entry.Action, entry.ID, f.path, err)
	}
	return nil
}

// GetRecent returns up to limit of the newest entries, oldest first. A negative limit returns all.
func (f *FileAuditor) GetRecent(limit int) ([]core.AuditEntry, error) {
	return f.Find(func(core.AuditEntry) bool { return true }, limit)
}

// Find returns up to limit of the newest entries matching filter, oldest first.
// Lines that do not decode are skipped.
func (f *FileAuditor) Find(filter func(entry core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	in, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading audit file %q: %w", f.path, err)
	}
	defer func() {
		_ = in.Close()
	}()

	var matches []core.AuditEntry
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		var entry core.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			log.Warn().Err(err).Str("path", f.path).Int("line", line).Msg("skipping malformed audit line")
			continue
		}
		if !filter(entry) {
			continue
		}
		matches = append(matches, entry)
		if limit >= 0 && len(matches) > limit {
			matches = matches[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning audit file %q: %w", f.path, err)
	}
	return matches, nil
}

func (f *FileAuditor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
