package ops

import (
	"archive/tar"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupRestoreDataDir_RoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	files := map[string]string{
		"documents.json":      `{"users":{"default":{"tasks":[{"id":"1","title":"Laundry"}]}}}`,
		"icons/dream-1.txt":   `data:image/png;base64,AAAA`,
		"exports/report.json": `{"capital":1250}`,
	}
	for rel, content := range files {
		path := filepath.Join(src, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir parent %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	archive := filepath.Join(t.TempDir(), "backup"+ArchiveExt)
	if err := BackupDataDir(src, archive); err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	restoreDir := filepath.Join(t.TempDir(), "restore")
	if err := RestoreDataDir(archive, restoreDir); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	got := map[string]string{}
	err := filepath.WalkDir(restoreDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(restoreDir, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk restore dir: %v", err)
	}

	if !reflect.DeepEqual(files, got) {
		t.Fatalf("restored files mismatch:\nwant=%v\ngot=%v", files, got)
	}
}

func TestRestoreDataDir_RejectsPathTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bad"+ArchiveExt)
	f, err := os.Create(archive)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	tw := tar.NewWriter(enc)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "../escape.txt",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len("bad")),
	}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := tw.Write([]byte("bad")); err != nil {
		t.Fatalf("write body: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close zstd writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	if err := RestoreDataDir(archive, filepath.Join(t.TempDir(), "out")); err == nil {
		t.Fatalf("expected restore to reject path traversal archive")
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestDrillDetectsCleanRoundTrip(t *testing.T) {
	data := t.TempDir()
	writeTree(t, data, map[string]string{
		"documents.json":  `{"users":{}}`,
		"db/terranova.db": "SQLite format 3",
	})
	rep, err := Drill(data, t.TempDir())
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Equal(t, 2, rep.Files)
	assert.FileExists(t, rep.Archive)
}

func TestBackupSkipsTransientFiles(t *testing.T) {
	data := t.TempDir()
	writeTree(t, data, map[string]string{
		"documents.json":          `{"users":{}}`,
		"documents.json.tmp":      `{"users":`,
		"terranova.db-shm":        "shm",
		"old/terranova-x.tar.zst": "nested",
	})
	rep, err := Drill(data, t.TempDir())
	require.NoError(t, err)
	assert.True(t, rep.OK(), "mismatch: %v", rep.Mismatch)
	assert.Equal(t, 1, rep.Files)

	restored := filepath.Join(filepath.Dir(rep.Archive), "restored")
	assert.FileExists(t, filepath.Join(restored, "documents.json"))
	assert.NoFileExists(t, filepath.Join(restored, "documents.json.tmp"))
	assert.NoFileExists(t, filepath.Join(restored, "terranova.db-shm"))
}

func TestSchedulerRunOncePrunes(t *testing.T) {
	data, backups := t.TempDir(), t.TempDir()
	writeTree(t, data, map[string]string{"documents.json": `{}`})

	now := time.Date(2026, 4, 1, 3, 0, 0, 0, time.UTC)
	flushed := 0
	var results []error
	s, err := NewScheduler(SchedulerOptions{
		DataDir:      data,
		BackupDir:    backups,
		Spec:         "0 3 * * *",
		Keep:         2,
		BeforeBackup: func(context.Context) error { flushed++; return errors.New("offline") },
		OnResult:     func(_ string, err error) { results = append(results, err) },
		Now:          func() time.Time { return now },
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		path, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(backups, ArchiveName(now)), path)
		now = now.Add(24 * time.Hour)
	}
	assert.Equal(t, 3, flushed)
	assert.Equal(t, []error{nil, nil, nil}, results)

	entries, err := os.ReadDir(backups)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "terranova-20260402T030000Z.tar.zst", entries[0].Name())
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(SchedulerOptions{DataDir: "a", BackupDir: "b", Spec: "every day"})
	assert.Error(t, err)
}
