package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/achalasia-report/internal/application/analysis"
	appreport "github.com/bryanwahyu/achalasia-report/internal/application/report"
	"github.com/bryanwahyu/achalasia-report/internal/domain/analysis"
)

type analyzeOutput struct {
	Analysis analysis.Result      `json:"analysis"`
	FileName string               `json:"fileName"`
	Outcome  analysis.OutcomeKind `json:"outcome"`
	View     analysis.View        `json:"view"`
	Warnings []analysis.Violation `json:"warnings,omitempty"`
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze one image and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.submit(cmd, args[0], mimeType)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analyzeOutput{
				Analysis: resp.Outcome.Result,
				FileName: resp.FileName,
				Outcome:  resp.Outcome.Kind,
				View:     analysis.NewView(resp.Outcome.Result),
				Warnings: resp.Warnings,
			})
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "media type of the image (sniffed when empty)")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var (
		mimeType string
		outDir   string
		publish  bool
	)
	cmd := &cobra.Command{
		Use:   "report <image>",
		Short: "Analyze one image and write the PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.submit(cmd, args[0], mimeType)
			if err != nil {
				return err
			}
			if resp.Outcome.IsFallback() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: model answer could not be parsed, report uses the fallback result")
			}
			art, err := a.reports.Build(cmd.Context(), appreport.Request{Result: resp.Outcome.Result, FileName: resp.FileName})
			if err != nil {
				return err
			}
			return a.deliver(cmd, art, outDir, publish)
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "media type of the image (sniffed when empty)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the PDF")
	cmd.Flags().BoolVar(&publish, "publish", false, "also upload the PDF to the configured storage")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		fileName string
		outDir   string
		publish  bool
	)
	cmd := &cobra.Command{
		Use:   "render <result.json>",
		Short: "Render a PDF from a saved analysis result",
		Long: "Render a PDF from a saved analysis result. The file may hold either a bare\n" +
			"result object or the output of the analyze command.",
		Args: cobra.ExactArgs(1),
		// render never talks to the model, so a missing API key is fine here
		RunE: func(cmd *cobra.Command, args []string) error {
			res, name, err := readResult(args[0])
			if err != nil {
				return err
			}
			if fileName != "" {
				name = fileName
			}
			if name == "" {
				name = appanalysis.DefaultFileName
			}
			art, err := a.reports.Build(cmd.Context(), appreport.Request{Result: res, FileName: name})
			if err != nil {
				return err
			}
			return a.deliver(cmd, art, outDir, publish)
		},
	}
	cmd.Flags().StringVar(&fileName, "file-name", "", "original image name shown in the report")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the PDF")
	cmd.Flags().BoolVar(&publish, "publish", false, "also upload the PDF to the configured storage")
	return cmd
}

func (a *app) submit(cmd *cobra.Command, path, mimeType string) (*appanalysis.Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.analysis.Submit(cmd.Context(), appanalysis.Submission{
		Image:    data,
		MIMEType: mimeType,
		FileName: filepath.Base(path),
	})
}

// deliver writes the artifact into outDir and optionally publishes it. The
// written path (and URL) go to stdout.
func (a *app) deliver(cmd *cobra.Command, art *appreport.Artifact, outDir string, publish bool) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(outDir, art.Name)
	if err := os.WriteFile(dst, art.Content, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages, %s)\n", dst, art.Pages, art.ReportID)

	if !publish {
		return nil
	}
	pub, err := a.reports.Publish(cmd.Context(), art)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pub.URL)
	return nil
}

// readResult accepts a bare result or an {"analysis": ..., "fileName": ...}
// envelope as written by analyze.
func readResult(path string) (analysis.Result, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return analysis.Result{}, "", err
	}

	var env struct {
		Analysis *analysis.Result `json:"analysis"`
		FileName string           `json:"fileName"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return analysis.Result{}, "", fmt.Errorf("%s: %w", path, err)
	}
	if env.Analysis != nil {
		return validResult(path, *env.Analysis, env.FileName)
	}

	var res analysis.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return analysis.Result{}, "", fmt.Errorf("%s: %w", path, err)
	}
	return validResult(path, res, "")
}

func validResult(path string, res analysis.Result, name string) (analysis.Result, string, error) {
	if !res.Diagnosis.Valid() {
		return analysis.Result{}, "", fmt.Errorf("%s: diagnosis must be Positive, Negative or Inconclusive", path)
	}
	return res.WithDefaults(), name, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
