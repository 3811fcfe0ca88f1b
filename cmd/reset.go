package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/image-gallery/config"
	"github.com/anoixa/image-gallery/internal/app"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// resetCmd 删除索引与全部图片文件
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the search index and every stored image",
	Long: `Delete the search index and every stored image.
The index is recreated lazily by the next search.`,
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		if err := runReset(yes); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
}

func runReset(yes bool) error {
	if !yes && !confirm("This will delete the search index and ALL stored images. Continue?") {
		fmt.Println("Aborted.")
		return nil
	}

	config.InitConfig()
	container := app.NewContainer(config.Get())
	if err := container.Init(); err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	result, err := container.ResetService.Reset(context.Background())
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	green.Printf("Deleted %d image(s)\n", result.Deleted)
	if result.Failed > 0 {
		red.Printf("Failed to delete %d image(s), see logs for details\n", result.Failed)
	}
	return nil
}

// confirm 读取 y/N 确认
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}
