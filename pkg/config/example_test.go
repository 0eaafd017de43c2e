package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/lotmig/pkg/config"
)

func ExampleLoad() {
	dir, err := os.MkdirTemp("", "lotmig-example")
	if err != nil {
		fmt.Printf("Error creating dir: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	configYAML := `
title: QC JPEG migration
source_root: /mnt/qc/raw
dest_root: /mnt/qc/flat
store:
  driver: postgres
  dsn: postgres://qc@db/qc?sslmode=disable
`
	path := filepath.Join(dir, ".lotmig.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	cfg, err := config.Load(context.Background(), path)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	fmt.Println(cfg.Title)
	fmt.Printf("%s -> %s\n", cfg.SourceRoot, cfg.DestRoot)
	fmt.Println(filepath.Base(cfg.Ledger), cfg.CopyWorkers)
	fmt.Printf("%s.%s\n", cfg.Store.Schema, cfg.Store.SystemName)

	// Output:
	// QC JPEG migration
	// /mnt/qc/raw -> /mnt/qc/flat
	// processed.log 1
	// vos.qc_jpeg
}
