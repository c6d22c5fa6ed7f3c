package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/duragraph/duragraph/internal/infrastructure/http/dto"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Author and run graph documents",
	}
	cmd.AddCommand(newGraphValidateCmd())
	cmd.AddCommand(newGraphRunCmd())
	return cmd
}

func newGraphValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a graph document against the brick registry without persisting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadGraphRequest(file)
			if err != nil {
				return err
			}

			client := newAPIClient(serverAddr)
			var result map[string]bool
			if err := client.post("/graphs/validate", req, &result); err != nil {
				return err
			}
			fmt.Println("valid")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a graph document JSON file (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newGraphRunCmd() *cobra.Command {
	var graphID, mode string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a run of an already-stored graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverAddr)
			var run dto.RunResponse
			body := dto.CreateRunRequest{Mode: mode}
			if err := client.post(fmt.Sprintf("/graphs/%s/runs", graphID), body, &run); err != nil {
				return err
			}
			fmt.Printf("started run %s (status=%s)\n", run.ID, run.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&graphID, "graph-id", "", "id of the stored graph to run (required)")
	cmd.Flags().StringVar(&mode, "mode", "normal", `execution mode: "normal" or "stepped"`)
	cmd.MarkFlagRequired("graph-id")
	return cmd
}

func loadGraphRequest(path string) (*dto.CreateGraphRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var req dto.CreateGraphRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &req, nil
}
