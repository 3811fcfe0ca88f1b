package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anoixa/image-gallery/config"
	"github.com/anoixa/image-gallery/internal/app"
	"github.com/anoixa/image-gallery/internal/services/gallery"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// reindexCmd 为建立索引失败的上传补建文档
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-index uploads whose blob was stored but never indexed",
	Long: `Re-index uploads whose blob was stored but never indexed.
Reads failed ingestions from the journal database, inspects the stored
blob again and writes the missing search documents.

With --prune, blobs that could not be decoded are deleted as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		prune, _ := cmd.Flags().GetBool("prune")
		if err := runReindex(prune); err != nil {
			log.Fatalf("Reindex failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
	reindexCmd.Flags().Bool("prune", false, "Also delete stored blobs that failed inspection")
}

func runReindex(prune bool) error {
	config.InitConfig()
	container := app.NewContainer(config.Get())
	if err := container.Init(); err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	result, err := container.ReindexService.Reindex(context.Background(), prune)
	if errors.Is(err, gallery.ErrJournalDisabled) {
		return fmt.Errorf("reindex requires the ingestion journal, set db_type to sqlite or postgres")
	}
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	green.Printf("Indexed: %d\n", result.Indexed)
	if result.Missing > 0 {
		yellow.Printf("Missing blobs: %d\n", result.Missing)
	}
	if prune {
		yellow.Printf("Pruned: %d\n", result.Pruned)
	}
	if result.Failed > 0 {
		red.Printf("Failed: %d\n", result.Failed)
	}
	return nil
}
