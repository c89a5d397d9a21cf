package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgnsrekt/onetab_rescue/internal/browser"
	"github.com/dgnsrekt/onetab_rescue/internal/config"
	"github.com/dgnsrekt/onetab_rescue/internal/rebuild"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		slog.Debug("log directory creation failed", "error", err)
	}

	logWriter := &lumberjack.Logger{
		Filename:   "logs/reconstructor.log",
		MaxSize:    25,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	path := flag.String("path", cfg.StoreDir, "path to the extension's LevelDB directory")
	input := flag.String("input", cfg.OutputJSON, "path to the recovered records JSON file")
	output := flag.String("output", cfg.StateFile, "path for the rebuilt state document")
	backupDir := flag.String("backup-dir", cfg.BackupDir, "directory to store backups")
	clearDB := flag.Bool("clear-db", false, "remove existing database files before writing new state (irreversible beyond the backup)")
	flag.Parse()

	ctx := context.Background()

	// The backup is unconditional and precedes every other step.
	backupPath, err := rebuild.Backup(*path, *backupDir)
	if err != nil {
		slog.Error("Backup failed, aborting", "error", err)
		return
	}
	slog.Info("Backup created", "path", backupPath)

	if info, err := os.Stat(*path); err != nil || !info.IsDir() {
		slog.Error("Extension path does not exist, no changes were made", "path", *path)
		return
	}

	records, err := rebuild.LoadRecords(*input)
	if err != nil {
		slog.Error("Failed to load records, no changes were made", "error", err)
		fmt.Println("\nYou can try manually importing the bookmarks HTML file instead.")
		return
	}
	slog.Info("Loaded records", "count", len(records), "input", *input)

	state := rebuild.NewBuilder().Build(records)

	if *clearDB {
		slog.Warn("Clearing the OneTab database (-clear-db flag set)")
		if err := rebuild.ClearStore(*path); err != nil {
			slog.Error("Failed to clear database, aborting", "error", err)
			fmt.Printf("\nYou can restore from the backup at: %s\n", backupPath)
			return
		}
	}

	if err := rebuild.WriteState(*output, state); err != nil {
		slog.Error("Failed to write state file", "error", err)
		return
	}
	slog.Info("Created OneTab state file", "path", *output, "groups", len(state.TabGroups))

	fmt.Printf("\nThe new state file has been created at: %s\n", *output)
	fmt.Println("To complete the fix, follow these steps:")
	fmt.Println("1. Make sure Chrome is running")
	fmt.Println("2. Close the OneTab extension if it's open")
	fmt.Println("3. Go to chrome://extensions in your browser")
	fmt.Println("4. Find OneTab and click 'Details'")
	fmt.Println("5. Toggle 'Allow access to file URLs' ON if it's not already enabled")
	fmt.Println("6. Now, try opening OneTab again")
	fmt.Println("7. If it's still not working, try the following:")
	fmt.Println("   a. Disable the OneTab extension")
	fmt.Println("   b. Close Chrome completely")
	fmt.Println("   c. Restart Chrome")
	fmt.Println("   d. Re-enable the OneTab extension")

	if browser.DetectRunning(ctx, cfg.CDPAddress, cfg.CDPPort) {
		slog.Info("Chrome appears to be running; restart it for changes to take effect")
	}

	fmt.Printf("\nPotential fix applied. If it doesn't work, restore from the backup at: %s\n", backupPath)
}
