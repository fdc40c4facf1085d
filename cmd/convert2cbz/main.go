// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the convert2cbz CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd converts a file or a directory of files to CBZ.
var rootCmd = &cobra.Command{
	Use:   "convert2cbz [flags] path",
	Short: "Convert PDF, CBR and EPUB files to CBZ",
	Long: `convert2cbz turns comic and manga documents into CBZ archives: a ZIP of
sequentially numbered page images.

path is a single .pdf, .cbr or .epub file, or a directory whose supported
files are all converted. PDF pages are rendered with poppler (pdftoppm) at
the given DPI, or at a DPI derived from the page widths when none is given.
RAR based CBR files need unrar (or rar) on PATH. CBR and EPUB images are
copied without re-encoding.

Settings are read from flags, CONVERT2CBZ_* environment variables (a .env
file in the working directory is loaded first) and convert2cbz.yaml.`,
	Args:          pathArg,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./convert2cbz.yaml or ~/.config/convert2cbz/convert2cbz.yaml)")
	rootCmd.SetFlagErrorFunc(flagError)
	registerConvertFlags(rootCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("convert2cbz")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "convert2cbz"))
		}
	}

	viper.SetEnvPrefix("CONVERT2CBZ")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		configErr = fmt.Errorf("reading config %s: %w", cfgFile, err)
	}
}

// configErr records a failure to read an explicitly requested config file;
// runConvert reports it before doing any work.
var configErr error

func main() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCodeFor(err))
}
