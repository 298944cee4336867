package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"agentscan/internal/rules"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store persists assembled snapshots keyed by project root. Validity is keyed
// on the discovered source set and its modification times: any added, removed,
// or touched document changes the key and misses the cache.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("cache path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("cache path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite cache %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SourceKey derives the validity key for a discovered file set: a digest over
// every (canonical path, mtime) pair in discovery order.
func SourceKey(files []rules.DiscoveredFile) string {
	h := sha256.New()
	for _, f := range files {
		fmt.Fprintf(h, "%s\x00%d\x00", f.Path, f.LastModified.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Save upserts the snapshot for its project root.
func (s *Store) Save(sourceKey string, snapshot *rules.RulesSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("nil snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	query := `
INSERT INTO snapshots (project_root, source_key, schema_version, created_at_utc, snapshot_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(project_root) DO UPDATE SET
  source_key=excluded.source_key,
  schema_version=excluded.schema_version,
  created_at_utc=excluded.created_at_utc,
  snapshot_json=excluded.snapshot_json
`
	return s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.ProjectRoot,
			sourceKey,
			SchemaVersion,
			snapshot.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(payload),
		)
		return err
	})
}

// Lookup returns the cached snapshot for projectRoot when its stored source
// key matches; ok is false on a miss or a stale entry.
func (s *Store) Lookup(projectRoot, sourceKey string) (*rules.RulesSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		storedKey string
		payload   string
	)
	err := s.withRetry("load snapshot", func() error {
		return s.db.QueryRow(
			`SELECT source_key, snapshot_json FROM snapshots WHERE project_root = ?`,
			projectRoot,
		).Scan(&storedKey, &payload)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if storedKey != sourceKey {
		return nil, false, nil
	}

	var snapshot rules.RulesSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		// A corrupt row is treated as a miss; the next Save overwrites it.
		return nil, false, nil
	}
	return &snapshot, true, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
