package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/usecase/run"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// caseFile is the YAML input of the run command.
type caseFile struct {
	entity.CaseTemplate `yaml:",inline"`
	Directions          []string `yaml:"directions"`
}

func readCaseFile(path string) (*caseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file: %w", err)
	}

	var cf caseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse case file %s: %w", path, err)
	}
	return &cf, nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate improvement opportunities and export them",
		Long: `Generate improvement opportunities for every direction of a case and
write them to a single file.

The case file is YAML with the fields sector, process, activity, event, cause
and an optional directions list. Directions given with --direction are added
after the ones in the file.

Examples:
  oportune run --case caso.yaml
  oportune run --case caso.yaml -d "Redução de custo" -d Qualidade --format docx
  oportune run --case caso.yaml --filter 'direction == "Qualidade"' --out q.xlsx`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	cmd.Flags().StringP("case", "c", "", "case description file (YAML)")
	cmd.Flags().StringArrayP("direction", "d", nil, "improvement direction (repeatable)")
	cmd.Flags().StringP("format", "f", string(entity.FormatXLSX), "export format (xlsx, docx, pdf, markdown, json)")
	cmd.Flags().String("filter", "", "CEL expression selecting exported rows")
	cmd.Flags().StringP("out", "o", "", "output file (default oportunidade_melhoria.<ext>)")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	_ = cmd.MarkFlagRequired("case")

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	casePath, _ := cmd.Flags().GetString("case")
	extra, _ := cmd.Flags().GetStringArray("direction")
	format, _ := cmd.Flags().GetString("format")
	filterExpr, _ := cmd.Flags().GetString("filter")
	outPath, _ := cmd.Flags().GetString("out")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	cf, err := readCaseFile(casePath)
	if err != nil {
		return err
	}

	pipeline, logger, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tmpl := cf.CaseTemplate
	s, err := pipeline.Sessions.CreateSession(ctx, &entity.CreateSessionRequest{
		Case:       &tmpl,
		Directions: append(cf.Directions, extra...),
	})
	if err != nil {
		return err
	}

	var opts []run.RunOption
	if !noProgress {
		bar := progressbar.NewOptions(s.Directions.Len(),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Gerando oportunidades"),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(cmd.ErrOrStderr())
			}),
		)
		opts = append(opts, run.WithProgress(func(direction string, _ int, err error) {
			if err != nil {
				logger.Warn("Direction failed", zap.String("direction", direction), zap.Error(err))
			}
			_ = bar.Add(1)
		}))
	}

	result, total, err := pipeline.Sessions.Run(ctx, s.ID, &entity.RunRequest{}, opts...)
	if err != nil {
		return err
	}

	for _, f := range result.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "falha em %q (%s): %s\n", f.Direction, f.Stage, f.Error)
	}
	if total == 0 && len(result.Failures) > 0 {
		return fmt.Errorf("no recommendations generated: %d direction(s) failed", len(result.Failures))
	}

	file, err := pipeline.Sessions.Export(ctx, s.ID, entity.ResultFormat(strings.ToLower(format)), filterExpr)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = file.FileName
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d linha(s) gravada(s) em %s\n", file.Rows, outPath)
	return nil
}
