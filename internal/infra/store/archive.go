package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"tldrscope/internal/domain"
)

var reportsBucket = []byte("reports")

// Entry summarises one archived report.
type Entry struct {
	RunID       string    `json:"runId"`
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
	Fingerprint string    `json:"fingerprint"`
	Success     bool      `json:"success"`
	Commands    int       `json:"commands"`
	Size        int       `json:"size"`
}

// Archive keeps finished reports in a bbolt file, one bucket per tool,
// keyed by generation time. Reports are only written and listed; runs
// never read them back.
type Archive struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

func OpenArchive(path string) (*Archive, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "store.open", "archive path is required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, domain.E(domain.CodeInternal, "store.open", "ensure archive dir", err)
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "store.open", "open archive db", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(reportsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, domain.E(domain.CodeInternal, "store.open", "init archive schema", err)
	}
	return &Archive{db: db, path: trimmed}, nil
}

func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

// Put stores report under its tool name.
func (a *Archive) Put(report domain.AnalyticsReport) error {
	tool := strings.TrimSpace(report.Metadata.Name)
	if tool == "" {
		return domain.E(domain.CodeInvalidArgument, "store.put", "report has no tool name", nil)
	}
	value, err := encodeReport(report)
	if err != nil {
		return domain.E(domain.CodeInternal, "store.put", "encode report", err)
	}
	return a.update(func(tx *bolt.Tx) error {
		bucket, err := tx.Bucket(reportsBucket).CreateBucketIfNotExists([]byte(tool))
		if err != nil {
			return err
		}
		return bucket.Put(reportKey(report), value)
	})
}

// List returns summaries for tool, oldest first.
func (a *Archive) List(tool string) ([]Entry, error) {
	entries := []Entry{}
	err := a.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(reportsBucket).Bucket([]byte(tool))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, value []byte) error {
			report, err := decodeReport(value)
			if err != nil {
				return err
			}
			entries = append(entries, summarize(report, len(value)))
			return nil
		})
	})
	if err != nil {
		return nil, wrapStoreErr("store.list", err)
	}
	return entries, nil
}

// Tools lists every tool with at least one archived report.
func (a *Archive) Tools() ([]string, error) {
	tools := []string{}
	err := a.view(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).ForEach(func(key, value []byte) error {
			if value == nil {
				tools = append(tools, string(key))
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapStoreErr("store.tools", err)
	}
	return tools, nil
}

// Latest returns the newest report for tool.
func (a *Archive) Latest(tool string) (domain.AnalyticsReport, bool, error) {
	var (
		report domain.AnalyticsReport
		found  bool
	)
	err := a.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(reportsBucket).Bucket([]byte(tool))
		if bucket == nil {
			return nil
		}
		_, value := bucket.Cursor().Last()
		if value == nil {
			return nil
		}
		decoded, err := decodeReport(value)
		if err != nil {
			return err
		}
		report, found = decoded, true
		return nil
	})
	if err != nil {
		return domain.AnalyticsReport{}, false, wrapStoreErr("store.latest", err)
	}
	return report, found, nil
}

func (a *Archive) view(fn func(*bolt.Tx) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return domain.ErrArchiveClosed
	}
	return a.db.View(fn)
}

func (a *Archive) update(fn func(*bolt.Tx) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return domain.ErrArchiveClosed
	}
	if err := a.db.Update(fn); err != nil {
		return wrapStoreErr("store.put", err)
	}
	return nil
}

// reportKey sorts by generation time; the run id keeps keys unique.
func reportKey(report domain.AnalyticsReport) []byte {
	key := make([]byte, 8, 8+len(report.RunID))
	binary.BigEndian.PutUint64(key, uint64(report.GeneratedAt.UnixNano()))
	return append(key, report.RunID...)
}

func summarize(report domain.AnalyticsReport, size int) Entry {
	return Entry{
		RunID:       report.RunID,
		Tool:        report.Metadata.Name,
		Version:     report.Metadata.Version,
		GeneratedAt: report.GeneratedAt,
		Fingerprint: report.Fingerprint,
		Success:     report.Validation.Success,
		Commands:    report.Validation.TotalCommands,
		Size:        size,
	}
}

func wrapStoreErr(op string, err error) error {
	if errors.Is(err, domain.ErrArchiveClosed) {
		return err
	}
	return domain.E(domain.CodeInternal, op, fmt.Sprintf("archive: %v", err), err)
}
