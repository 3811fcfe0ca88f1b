package cmd

import (
	"fmt"
	"os"

	"github.com/anoixa/image-gallery/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd 不带子命令时直接启动服务
var rootCmd = &cobra.Command{
	Use:          "image-gallery",
	Short:        "Searchable image gallery: upload, index and serve images",
	Version:      fmt.Sprintf("%s (%s)", config.Version, config.CommitHash),
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (eg: /etc/image-gallery/config.yaml)")
	if err := viper.BindPFlag("config_file_path", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		panic(err)
	}
}
