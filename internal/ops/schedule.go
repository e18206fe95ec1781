package ops

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type SchedulerOptions struct {
	DataDir   string
	BackupDir string
	// Spec is a standard five-field cron expression.
	Spec string
	Keep int
	// BeforeBackup runs first, typically to flush pending writes.
	BeforeBackup func(ctx context.Context) error
	// OnResult is told about every run.
	OnResult func(path string, err error)
	Logger   *log.Logger
	Now      func() time.Time
}

// Scheduler takes periodic backups of the data dir and prunes old ones.
type Scheduler struct {
	opts SchedulerOptions
	cron *cron.Cron
	mu   sync.Mutex
}

func NewScheduler(opts SchedulerOptions) (*Scheduler, error) {
	if strings.TrimSpace(opts.DataDir) == "" || strings.TrimSpace(opts.BackupDir) == "" {
		return nil, fmt.Errorf("data dir and backup dir are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Scheduler{opts: opts, cron: cron.New()}
	if _, err := s.cron.AddFunc(opts.Spec, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("backup schedule %q: %w", opts.Spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for a running backup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce takes one backup now and prunes beyond Keep.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.opts.BackupDir, ArchiveName(s.opts.Now()))
	err := s.run(ctx, path)
	if err != nil {
		s.opts.Logger.Printf("backup failed path=%s err=%v", path, err)
	} else {
		s.opts.Logger.Printf("backup written path=%s", path)
	}
	if s.opts.OnResult != nil {
		s.opts.OnResult(path, err)
	}
	return path, err
}

func (s *Scheduler) run(ctx context.Context, path string) error {
	if s.opts.BeforeBackup != nil {
		if err := s.opts.BeforeBackup(ctx); err != nil {
			s.opts.Logger.Printf("backup pre-flush failed err=%v", err)
		}
	}
	if _, err := os.Stat(s.opts.DataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(s.opts.DataDir, 0o755); err != nil {
			return err
		}
	}
	if err := BackupDataDir(s.opts.DataDir, path); err != nil {
		return err
	}
	if s.opts.Keep > 0 {
		return Prune(s.opts.BackupDir, s.opts.Keep)
	}
	return nil
}

// ArchiveName is the file name of a backup taken at t.
func ArchiveName(t time.Time) string {
	return "terranova-" + t.UTC().Format("20060102T150405Z") + ArchiveExt
}

// Prune removes all but the newest keep archives in dir.
func Prune(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "terranova-") && strings.HasSuffix(e.Name(), ArchiveExt) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return nil
	}
	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
