package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgnsrekt/onetab_rescue/internal/config"
	"github.com/dgnsrekt/onetab_rescue/internal/export"
	"github.com/dgnsrekt/onetab_rescue/internal/extract"
	"github.com/dgnsrekt/onetab_rescue/internal/scan"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		slog.Debug("log directory creation failed", "error", err)
	}

	logWriter := &lumberjack.Logger{
		Filename:   "logs/scanner.log",
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
	output := flag.String("output", cfg.OutputJSON, "output file for recovered records (JSON)")
	htmlOut := flag.String("html", cfg.OutputHTML, "output HTML file for bookmark import")
	flag.Parse()

	scanner := scan.New(extract.New())
	records, err := scanner.Scan(context.Background(), *path)
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrMissingDir),
			errors.Is(err, scan.ErrNoFiles),
			errors.Is(err, scan.ErrNoRecords):
			slog.Error("Scan found nothing to recover", "error", err)
		default:
			slog.Error("Scan failed", "error", err)
		}
		slog.Info("Unable to extract OneTab data")
		return
	}

	if err := export.WriteRecords(*output, records); err != nil {
		slog.Error("Failed to write records", "error", err)
		return
	}
	txtPath := export.TextPath(*output)
	if err := export.WriteText(txtPath, records); err != nil {
		slog.Error("Failed to write text listing", "error", err)
		return
	}
	slog.Info("Extraction complete", "records", len(records), "json", *output, "txt", txtPath)

	if err := export.WriteBookmarks(*htmlOut, records); err != nil {
		slog.Error("Failed to write bookmarks HTML", "error", err)
		return
	}
	slog.Info("Bookmarks exported", "html", *htmlOut)

	fmt.Println("\nRecovery completed successfully!")
	fmt.Printf("JSON data saved to: %s\n", *output)
	fmt.Printf("HTML bookmarks file saved to: %s\n", *htmlOut)
	fmt.Println("\nYou can import the HTML file into Chrome or Firefox bookmarks:")
	fmt.Println("Chrome: Bookmarks -> Import bookmarks and settings -> Bookmarks HTML file")
	fmt.Println("Firefox: Bookmarks -> Manage Bookmarks -> Import and Backup -> Import Bookmarks from HTML")
}
