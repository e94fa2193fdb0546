package main

import (
	"fmt"
	"github.com/ariefcatur/espada-admin/internal/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"os"
	"strings"
)

var (
	rootCmd = &cobra.Command{
		Use:               "espada",
		Short:             "Espada admin backend: dashboard analytics and order status",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the espada version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	cfg     config.Config
	version = "dev"
)

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	cfg = config.Load()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}

func init() {
	rootCmd.AddCommand(versionCmd, serveCmd, workerCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("espada exited")
		os.Exit(1)
	}
}
