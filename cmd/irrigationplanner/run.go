package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adps75/irrigation-editor/internal/config"
	"github.com/Adps75/irrigation-editor/pkg/plan"
	"github.com/Adps75/irrigation-editor/pkg/render"
	"github.com/Adps75/irrigation-editor/pkg/spec"
	"github.com/Adps75/irrigation-editor/pkg/validation"
)

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newPlanner(cfg *config.Config) (*plan.Planner, error) {
	p, err := plan.NewPlanner(cfg.Planner())
	if err != nil {
		return nil, fmt.Errorf("configuring planner: %w", err)
	}
	return p, nil
}

// loadRequest reads a request file, or stdin for "-".
func loadRequest(cmd *cobra.Command, path string) (*spec.Request, error) {
	if path == "-" {
		return spec.Decode(cmd.InOrStdin())
	}
	return spec.Load(path)
}

// setup loads the configuration, the planner and the request.
func setup(cmd *cobra.Command, configPath, requestPath string) (*plan.Planner, *spec.Request, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	p, err := newPlanner(cfg)
	if err != nil {
		return nil, nil, err
	}
	req, err := loadRequest(cmd, requestPath)
	if err != nil {
		return nil, nil, err
	}
	return p, req, nil
}

// generate runs the planner and prints the diagnostics of a rejected
// request. A partially connected plan is returned with its error.
func generate(cmd *cobra.Command, p *plan.Planner, req *spec.Request) (*plan.Plan, error) {
	out, err := p.Generate(req)
	if err != nil && out == nil {
		var ve *validation.Error
		if errors.As(err, &ve) && ve.Report != nil {
			printValidationReport(cmd.ErrOrStderr(), ve.Report)
		}
		return nil, err
	}
	return out, err
}

func runPlan(cmd *cobra.Command, configPath, requestPath, output string) error {
	p, req, err := setup(cmd, configPath, requestPath)
	if err != nil {
		return err
	}
	out, planErr := generate(cmd, p, req)
	if out == nil {
		return planErr
	}

	return withOutput(cmd, output, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		return planErr
	})
}

func runValidate(cmd *cobra.Command, configPath, requestPath string) error {
	p, req, err := setup(cmd, configPath, requestPath)
	if err != nil {
		return err
	}
	report := p.Validate(req)
	printValidationReport(cmd.OutOrStdout(), report)
	if !report.Valid {
		return fmt.Errorf("request is invalid: %s", report.Summary)
	}
	return nil
}

func runCost(cmd *cobra.Command, configPath, requestPath string) error {
	p, req, err := setup(cmd, configPath, requestPath)
	if err != nil {
		return err
	}
	out, planErr := generate(cmd, p, req)
	if out == nil {
		return planErr
	}
	printCostReport(cmd.OutOrStdout(), out)
	return planErr
}

func runRender(cmd *cobra.Command, configPath, requestPath, output string, width int) error {
	p, req, err := setup(cmd, configPath, requestPath)
	if err != nil {
		return err
	}
	out, planErr := generate(cmd, p, req)
	if out == nil {
		return planErr
	}
	scene, err := render.Assemble(req, out, p.Projector(), render.Options{Width: width})
	if err != nil {
		return err
	}
	if err := withOutput(cmd, output, scene.WriteSVG); err != nil {
		return err
	}
	if output != "" && output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%dx%d)\n", output, scene.Width, scene.Height)
	}
	return planErr
}

// withOutput runs write against stdout for "" or "-", otherwise against the
// named file.
func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	werr := write(f)
	if cerr := f.Close(); cerr != nil && werr == nil {
		return fmt.Errorf("closing %s: %w", path, cerr)
	}
	return werr
}
