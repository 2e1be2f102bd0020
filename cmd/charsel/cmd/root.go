package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"charselect/internal/dataset"
	"charselect/internal/preview"
	"charselect/pkg/utils"
)

var (
	apiBase  string
	dataDir  string
	useProxy bool
	timeout  time.Duration

	datasetTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "charsel",
	Short: "Headless host for the character selector",
	Long: `charsel drives the character selector outside the editor: it lists
datasets, resolves character aliases and renders the preview widget to PNG.

Datasets are fetched from the selector server (--api) unless --data-dir
points at a local data directory.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cfg := utils.LoadPreviewConfig()
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", cfg.APIBase, "selector server base URL")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "read datasets from a local directory instead of the server")
	rootCmd.PersistentFlags().BoolVar(&useProxy, "proxy", cfg.UseProxy, "load icons through the server's /preview/icon proxy")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", cfg.ImageTimeout, "timeout for each image fetch")
	rootCmd.PersistentFlags().DurationVar(&datasetTimeout, "dataset-timeout", cfg.DatasetTimeout, "timeout for each dataset fetch")

	rootCmd.AddCommand(datasetsCmd, charactersCmd, resolveCmd, previewCmd, watchCmd)
}

// clientConfig is the preview config as overridden by the command line.
func clientConfig() utils.PreviewConfig {
	return utils.PreviewConfig{
		APIBase:        strings.TrimRight(apiBase, "/"),
		UseProxy:       useProxy,
		DatasetTimeout: datasetTimeout,
		ImageTimeout:   timeout,
	}
}

func newLoader() dataset.Loader {
	if dataDir != "" {
		return dataset.NewDirLoader(dataDir)
	}
	cfg := clientConfig()
	return dataset.NewHTTPLoader(cfg.DataURL(), cfg.DatasetTimeout)
}

func newCache() *dataset.Cache {
	return dataset.NewCache(newLoader(), nil)
}

func previewOptions() preview.Options {
	cfg := clientConfig()
	opts := preview.Options{Timeout: cfg.ImageTimeout}
	if cfg.UseProxy {
		opts.ProxyBase = cfg.APIBase
	}
	return opts
}
