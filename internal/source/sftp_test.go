package source

import (
	"io/fs"
	"os"
	"testing"
	"time"
)

type fileInfo struct {
	name  string
	mod   time.Time
	isDir bool
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return 0 }
func (f fileInfo) Mode() fs.FileMode  { return 0644 }
func (f fileInfo) ModTime() time.Time { return f.mod }
func (f fileInfo) IsDir() bool        { return f.isDir }
func (f fileInfo) Sys() any           { return nil }

func TestPickLatest(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 18, 23, 0, 0, 0, time.UTC)
	entries := []os.FileInfo{
		fileInfo{name: "fechamento-17.xlsx", mod: base.Add(-24 * time.Hour)},
		fileInfo{name: "fechamento-18.XLSX", mod: base},
		fileInfo{name: "notas.txt", mod: base.Add(time.Hour)},
		fileInfo{name: "arquivo", mod: base.Add(2 * time.Hour), isDir: true},
	}

	got, ok := PickLatest(entries)
	if !ok || got != "fechamento-18.XLSX" {
		t.Fatalf("unexpected pick %q (%v)", got, ok)
	}

	if _, ok := PickLatest([]os.FileInfo{fileInfo{name: "notas.txt"}}); ok {
		t.Fatalf("no spreadsheet should be picked")
	}
}

func TestSSHConfig_Validation(t *testing.T) {
	t.Parallel()

	if _, err := sshConfig(Config{Server: "host:22"}); err == nil {
		t.Fatalf("want error without username")
	}
	if _, err := sshConfig(Config{Server: "host:22", Username: "pos", PrivateKey: "not a key"}); err == nil {
		t.Fatalf("want error for invalid private key")
	}
}
