package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"liquidshuffle/config"
	"liquidshuffle/core/library"
	"liquidshuffle/db"
	"liquidshuffle/model"
	"liquidshuffle/repository"
)

var importPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a library export file into the database",
	Long: `Parse a library export file and replace the stored library snapshot with its
contents. The server then serves the imported pool without needing the file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		path := importPath
		if path == "" {
			path = cfg.LibraryPath
		}

		entries, err := library.LoadFile(path)
		if err != nil {
			log.Fatalf("Failed to read library file: %v", err)
		}
		fmt.Printf("Parsed %d entries from %s\n", len(entries), path)

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to the database: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrateModels(&model.LibraryEntry{}); err != nil {
			log.Fatalf("Failed to migrate schema: %v", err)
		}

		repo := repository.NewGormLibraryRepository(db.GormDB)
		if err := repo.ReplaceAll(context.Background(), entries); err != nil {
			log.Fatalf("Failed to store library entries: %v", err)
		}

		count, err := repo.Count(context.Background())
		if err != nil {
			log.Fatalf("Failed to verify import: %v", err)
		}
		fmt.Printf("Import complete, %d entries stored.\n", count)
	},
}

func init() {
	importCmd.Flags().StringVarP(&importPath, "file", "f", "", "path to the library export file (defaults to LIBRARY_PATH)")
	rootCmd.AddCommand(importCmd)
}
