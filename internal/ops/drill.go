package ops

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

type DrillReport struct {
	Archive  string   `json:"archive"`
	Files    int      `json:"files"`
	Bytes    int64    `json:"bytes"`
	Mismatch []string `json:"mismatch,omitempty"`
}

func (r DrillReport) OK() bool { return len(r.Mismatch) == 0 }

// Drill backs up dataDir into workDir, restores it next to the archive and
// compares every file byte for byte.
func Drill(dataDir, workDir string) (DrillReport, error) {
	archive := filepath.Join(workDir, "drill"+ArchiveExt)
	rep := DrillReport{Archive: archive}
	if err := BackupDataDir(dataDir, archive); err != nil {
		return rep, fmt.Errorf("drill backup: %w", err)
	}
	restored := filepath.Join(workDir, "restored")
	if err := RestoreDataDir(archive, restored); err != nil {
		return rep, fmt.Errorf("drill restore: %w", err)
	}

	want, err := readTree(dataDir)
	if err != nil {
		return rep, err
	}
	got, err := readTree(restored)
	if err != nil {
		return rep, err
	}
	for rel, b := range want {
		rep.Files++
		rep.Bytes += int64(len(b))
		if g, ok := got[rel]; !ok || !bytes.Equal(g, b) {
			rep.Mismatch = append(rep.Mismatch, rel)
		}
	}
	for rel := range got {
		if _, ok := want[rel]; !ok {
			rep.Mismatch = append(rep.Mismatch, rel)
		}
	}
	sort.Strings(rep.Mismatch)
	return rep, nil
}

func readTree(root string) (map[string][]byte, error) {
	out := map[string][]byte{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if skipEntry(rel) {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[rel] = b
		return nil
	})
	return out, err
}
