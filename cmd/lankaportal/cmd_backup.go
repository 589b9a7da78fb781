package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/HerbHall/lankaportal/internal/backup"
	"github.com/HerbHall/lankaportal/internal/config"
)

func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	output := fs.String("output", "", "output file path (default: lankaportal-backup-{timestamp}.tar.gz)")
	configPath := fs.String("config", "", "configuration file; also added to the archive")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *output == "" {
		*output = fmt.Sprintf("lankaportal-backup-%s.tar.gz", time.Now().Format("20060102-150405"))
	}

	m, err := backup.Backup(context.Background(), cfg.GetString("database.path"), *configPath, *output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Backup created: %s (%s)\n", *output, m.Database)
}

func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	input := fs.String("input", "", "backup archive to restore (required)")
	dataDir := fs.String("data-dir", ".", "target directory for restored files")
	force := fs.Bool("force", false, "overwrite existing files")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "error: -input is required")
		fs.Usage()
		os.Exit(1)
	}

	m, err := backup.Restore(context.Background(), *input, *dataDir, *force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "restore failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Restored %s backup from %s to %s\n", m.Version, m.CreatedAt.Format(time.RFC3339), *dataDir)
}
