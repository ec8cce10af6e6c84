package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/services"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run a workflow file to completion and print the execution",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Workflow definition in YAML or JSON",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "inputs",
				Usage: "Run inputs as a JSON object",
				Value: "{}",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			wf, err := loadWorkflowFile(command.String("file"))
			if err != nil {
				return err
			}

			inputs, err := parseInputs(command.String("inputs"))
			if err != nil {
				return err
			}

			s, err := newStack(ctx, command, "run")
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			err = services.NewWorkflow(s.persistence, s.registry).Validate(wf)
			if err != nil {
				return err
			}

			s.logger.InfoContext(ctx, "Running workflow", "workflow_id", wf.ID, "name", wf.Name)

			execution, err := s.executor.Execute(ctx, wf, inputs)
			if err != nil {
				return err
			}

			err = writeJSON(command.Root().Writer, execution)
			if err != nil {
				return err
			}

			if execution.Status != models.ExecutionStatusCompleted {
				return fmt.Errorf("execution %s finished %s", execution.ID, execution.Status)
			}

			return nil
		},
	}
}

// loadWorkflowFile reads a workflow written in YAML or JSON. Field names
// follow the JSON form of models.Workflow. A workflow without an id takes the
// file name.
func loadWorkflowFile(path string) (*models.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var document any

	err = yaml.Unmarshal(data, &document)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}

	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to convert workflow file %s: %w", path, err)
	}

	var wf models.Workflow

	err = json.Unmarshal(encoded, &wf)
	if err != nil {
		return nil, fmt.Errorf("invalid workflow file %s: %w", path, err)
	}

	if wf.ID == "" {
		wf.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &wf, nil
}

func parseInputs(raw string) (map[string]any, error) {
	inputs := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return inputs, nil
	}

	err := json.Unmarshal([]byte(raw), &inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs must be a JSON object: %w", err)
	}

	return inputs, nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}
