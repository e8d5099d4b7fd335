package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/topictrace/internal/config"
	"github.com/matsen/topictrace/internal/storage"
)

func TestIsStale(t *testing.T) {
	dir := t.TempDir()
	ds1 := filepath.Join(dir, "ds-1.tsv")
	ds2 := filepath.Join(dir, "ds-2.tsv")
	for _, p := range []string{ds1, ds2} {
		if err := os.WriteFile(p, []byte("2000\ta\tb\t{'x': 1}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.DS1Path = ds1
	cfg.DS2Path = ds2
	fresh := storage.Info{DS1Path: ds1, DS2Path: ds2, RebuiltAt: time.Now().UTC().Format(time.RFC3339)}

	if isStale(cfg, storage.Info{}) {
		t.Error("empty cache reported stale")
	}
	if isStale(cfg, fresh) {
		t.Error("fresh cache reported stale")
	}

	moved := fresh
	moved.DS2Path = filepath.Join(dir, "old-ds-2.tsv")
	if !isStale(cfg, moved) {
		t.Error("cache built from other paths not reported stale")
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(ds1, later, later); err != nil {
		t.Fatal(err)
	}
	if !isStale(cfg, fresh) {
		t.Error("dataset modified after rebuild not reported stale")
	}
}
