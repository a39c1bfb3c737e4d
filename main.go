package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/victor-roliveira/interface-quanta/pkg/auth"
	"github.com/victor-roliveira/interface-quanta/pkg/config"
	"github.com/victor-roliveira/interface-quanta/pkg/logging"
	"github.com/victor-roliveira/interface-quanta/pkg/sheet"
	"github.com/victor-roliveira/interface-quanta/pkg/tasks"
	"github.com/victor-roliveira/interface-quanta/pkg/web"
)

var (
	cfgFile string
	debug   bool
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "interface-quanta",
		Short: "Task-tracking form backed by a Google Sheets spreadsheet",
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Init(debug)
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the insert/edit/view web forms",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := buildService(cmd)
			if err != nil {
				return err
			}

			server, err := web.NewServer(svc, cfg)
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:         cfg.Addr,
				Handler:      server.Routes(),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			log.Info().Str("addr", cfg.Addr).Str("spreadsheet", cfg.SpreadsheetID).
				Msg("serving task forms")
			return httpServer.ListenAndServe()
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate credentials and the live spreadsheet header row",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := buildService(cmd)
			if err != nil {
				return err
			}

			records, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int("tasks", len(records)).Msg("spreadsheet schema and credentials OK")
			return nil
		},
	}
}

func buildService(cmd *cobra.Command) (*tasks.Service, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	creds, err := auth.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, nil, err
	}

	srv, err := auth.NewSheetsService(cmd.Context(), creds)
	if err != nil {
		return nil, nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	client := sheet.NewClient(srv, cfg.SpreadsheetID, cfg.Worksheet)
	return tasks.NewService(client, loc), cfg, nil
}
