// Package cli contains the organizer command line: the API server and
// one-shot scan, analyze and apply commands against a local folder.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"organizer-api/internal/config"
	"organizer-api/internal/llm"
	"organizer-api/internal/logging"
	"organizer-api/internal/models"
	"organizer-api/internal/services"
	"organizer-api/internal/store"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           "organizer",
		Short:         "Organize a folder into categories suggested by a language model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Init(cfg.Log)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file or directory")

	registerServeCommand()
	registerOrganizeCommands()
	registerMetricsCommand()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// appState is what every command that touches state needs
type appState struct {
	cfg       *config.Config
	store     *store.Store
	progress  *models.ProgressStore
	organizer *services.OrganizerService
}

func newAppState(ctx context.Context) (*appState, error) {
	cfg := config.AppConfig

	st, err := store.Open(ctx, cfg.Data.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	progress := models.NewProgressStore()
	plans := services.NewPlanService(llm.NewGate(cfg.LLM), cfg.LLM.TimeoutDuration())
	budget := models.ScanBudget{MaxDepth: cfg.Scan.MaxDepth, MaxFilesScanned: cfg.Scan.MaxFiles}

	return &appState{
		cfg:       cfg,
		store:     st,
		progress:  progress,
		organizer: services.NewOrganizerService(st, plans, budget, cfg.Scan.Markers, progress),
	}, nil
}

func (r *appState) Close() error {
	return r.store.Close()
}

func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
