package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/achalasia-report/internal/application"
	appanalysis "github.com/bryanwahyu/achalasia-report/internal/application/analysis"
	appreport "github.com/bryanwahyu/achalasia-report/internal/application/report"
	"github.com/bryanwahyu/achalasia-report/internal/config"
	"github.com/bryanwahyu/achalasia-report/internal/infra/ai/provider"
	"github.com/bryanwahyu/achalasia-report/internal/infra/render/pdf"
	"github.com/bryanwahyu/achalasia-report/internal/infra/storage"
	"github.com/bryanwahyu/achalasia-report/internal/logger"
)

// app holds everything the subcommands share. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	configPath string
	cfg        *config.Config

	analysis *appanalysis.Service
	reports  *appreport.Service
	store    storage.Store
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "achalasia",
		Short:         "Analyze esophageal imaging for achalasia and render PDF reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}
	defaultConfig := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfig, "path to the YAML config file")

	root.AddCommand(
		newAnalyzeCmd(a),
		newReportCmd(a),
		newRenderCmd(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	// stdout dipakai untuk output perintah, log ke stderr
	logger.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithError(err).Warn("could not read .env")
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	a.cfg = cfg

	client, providerName, err := provider.New(cfg)
	if err != nil {
		return err
	}
	store, driver, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage %s: %w", driver, err)
	}

	clock := application.SystemClock{}
	a.analysis = appanalysis.NewService(client, providerName, clock)
	a.reports = &appreport.Service{
		Renderer:   pdf.NewRenderer(),
		Measurer:   pdf.NewMeasurer(),
		Driver:     driver,
		Clock:      clock,
		FilePrefix: cfg.Report.FilePrefix,
	}
	a.reports.Footer.Attribution = cfg.Report.Attribution
	if store != nil {
		a.store = store
		a.reports.Publisher = store
	}
	return nil
}
