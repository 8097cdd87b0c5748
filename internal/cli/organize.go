package cli

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"organizer-api/internal/models"
	"organizer-api/internal/services"
)

var (
	scanCmd = &cobra.Command{
		Use:   "scan <path>",
		Short: "List a folder and summarize its sub-folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			items, err := rt.organizer.ScanFolder(cmd.Context(), services.NewLocalFS(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze <path>",
		Short: "Scan a folder and print the suggested plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			items, err := rt.organizer.ScanFolder(cmd.Context(), services.NewLocalFS(), args[0])
			if err != nil {
				return err
			}
			res, err := rt.organizer.AnalyzeFolder(cmd.Context(), args[0], items)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analyzeResponse(res))
		},
	}

	applyCmd = &cobra.Command{
		Use:   "apply <path> <plan.json>",
		Short: "Apply a saved plan to a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := readPlan(args[1])
			if err != nil {
				return err
			}

			rt, err := newAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.organizer.ExecuteOrganization(cmd.Context(), services.NewLocalFS(), args[0], plan, "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
)

func registerOrganizeCommands() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(applyCmd)
}

func analyzeResponse(res *services.AnalyzeResult) models.AnalyzeResponse {
	resp := models.AnalyzeResponse{Plan: res.Plan}
	if res.Debug != nil {
		resp.Debug = res.Debug
	}
	return resp
}

// readPlan loads a plan file. Both a bare plan object and an analyze
// response ({"plan": {...}}) are accepted.
func readPlan(path string) (models.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Plan{}, fmt.Errorf("read plan: %w", err)
	}

	var wrapped struct {
		Plan *models.Plan `json:"plan"`
	}
	if err := sonic.Unmarshal(data, &wrapped); err == nil && wrapped.Plan != nil {
		return *wrapped.Plan, nil
	}

	var plan models.Plan
	if err := sonic.Unmarshal(data, &plan); err != nil {
		return models.Plan{}, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return plan, nil
}
