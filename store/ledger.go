package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// LedgerFile is the ledger name inside a data root.
const LedgerFile = "played_seeds.log"

// Ledger remembers which episode seeds already reached a finished Parquet
// batch, so an interrupted run can be resumed without replaying them. It is
// an append-only file with one seed per line; a torn last line is ignored.
type Ledger struct {
	mu     sync.RWMutex
	file   *os.File
	played map[int64]struct{}
}

// OpenLedger loads root's ledger, creating it when missing.
func OpenLedger(root string) (*Ledger, error) {
	if root == "" {
		return nil, fmt.Errorf("data root is required")
	}
	path := filepath.Join(root, LedgerFile)
	played := make(map[int64]struct{})

	if f, err := os.Open(path); err == nil {
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			seed, err := strconv.ParseInt(strings.TrimSpace(sc.Text()), 10, 64)
			if err != nil {
				continue
			}
			played[seed] = struct{}{}
		}
		_ = f.Close()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data root: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &Ledger{file: file, played: played}, nil
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Ledger) Has(seed int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.played[seed]
	return ok
}

func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.played)
}

// AddMany appends the seeds not yet recorded and syncs once.
func (l *Ledger) AddMany(seeds []int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("ledger is closed")
	}

	var b strings.Builder
	added := make([]int64, 0, len(seeds))
	for _, s := range seeds {
		if _, ok := l.played[s]; ok {
			continue
		}
		b.WriteString(strconv.FormatInt(s, 10))
		b.WriteByte('\n')
		added = append(added, s)
	}
	if len(added) == 0 {
		return nil
	}
	if _, err := l.file.WriteString(b.String()); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	for _, s := range added {
		l.played[s] = struct{}{}
	}
	return nil
}
