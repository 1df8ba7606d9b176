package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/foomo/docsite/pkg/handler"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/foomo/docsite/pkg/sitemap"
	"github.com/foomo/docsite/pkg/utils"
	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	keelhttp "github.com/foomo/keel/net/http"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func NewSitemapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Build and serve the sitemap of several sites",
	}
	cmd.AddCommand(NewSitemapBuildCommand())
	cmd.AddCommand(NewSitemapServeCommand())
	return cmd
}

func NewSitemapBuildCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "build <specs.yaml>",
		Short: "Clone and build all sites and store the merged sitemap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := zap.L().Named("sitemap")
			ctx := cmd.Context()

			specs, err := sitemap.LoadSpecs(args[0])
			if err != nil {
				return err
			}

			opts := []sitemap.BuilderOption{}
			if dir := workDirFlag(v); dir != "" {
				opts = append(opts, sitemap.BuilderWithWorkDir(dir))
			}
			set, err := sitemap.NewBuilder(l, opts...).Create(ctx, specs)
			if err != nil {
				return err
			}
			data, err := sitemap.Marshal(set)
			if err != nil {
				return err
			}

			if output := outputFlag(v); output != "" {
				if err := os.WriteFile(output, data, 0o644); err != nil { //nolint:gosec
					return fmt.Errorf("failed to write sitemap: %w", err)
				}
			}

			history, err := newHistory(ctx, v, l)
			if err != nil {
				return err
			}
			defer history.Close()
			return history.Add(ctx, data)
		},
	}

	flags := cmd.Flags()
	addWorkDirFlag(flags, v)
	addOutputFlag(flags, v)
	addHistoryLimitFlag(flags, v)
	addStorageFlags(flags, v)

	return cmd
}

func NewSitemapServeCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sitemap as xml and html",
		RunE: func(cmd *cobra.Command, args []string) error {
			if u := sitemapURLFlag(v); u != "" && !utils.IsValidURL(u) {
				return fmt.Errorf("invalid sitemap url %q", u)
			}

			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
				keel.WithOTLPGRPCTracer(otelEnabledFlag(v)),
				keel.WithHTTPPProfService(servicePProfEnabledFlag(v)),
			)

			l := svr.Logger()

			history, err := newHistory(cmd.Context(), v, l)
			if err != nil {
				return err
			}
			svr.AddClosers(func(ctx context.Context) error {
				return history.Close()
			})

			r := sitemap.NewRepo(l.Named("inst.repo"),
				history,
				sitemap.WithURL(sitemapURLFlag(v)),
				sitemap.WithHTTPClient(
					keelhttp.NewHTTPClient(
						keelhttp.HTTPClientWithTimeout(requestTimeoutFlag(v)),
						keelhttp.HTTPClientWithTelemetry(),
					),
				),
				sitemap.WithPollInterval(pollIntervalFlag(v)),
			)

			isLoadedHealtherFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
				if !r.Loaded() {
					return errors.New("sitemap not loaded yet")
				}
				return nil
			})
			svr.AddStartupHealthzers(isLoadedHealtherFn)
			svr.AddReadinessHealthzers(isLoadedHealtherFn)

			templates, err := handler.NewTemplates(nil)
			if err != nil {
				return err
			}

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.repo"), "repo", func(ctx context.Context, l *zap.Logger) error {
					return r.Start(ctx)
				}),
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					handler.NewSitemap(l.Named("inst.handler"), r, templates),
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.GZip(middleware.GZipWithLevel(gzipLevelFlag(v))),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addSitemapURLFlag(flags, v)
	addPollIntervalFlag(flags, v)
	addRequestTimeoutFlag(flags, v)
	addHistoryLimitFlag(flags, v)
	addStorageFlags(flags, v)
	addServerFlags(flags, v)

	return cmd
}

func newHistory(ctx context.Context, v *viper.Viper, l *zap.Logger) (*repo.History, error) {
	storage, err := createStorage(ctx, v, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	history, err := repo.NewHistory(l.Named("inst.history"),
		repo.HistoryWithStorage(storage),
		repo.HistoryWithHistoryLimit(historyLimitFlag(v)),
		repo.HistoryWithValidator(sitemap.Validate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create history: %w", err)
	}
	return history, nil
}
