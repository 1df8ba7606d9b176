package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/foomo/docsite/pkg/handler"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/foomo/docsite/pkg/search"
	"github.com/foomo/docsite/pkg/site"
	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a built site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := siteConfig(v)
			if err != nil {
				return err
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
			ctx := cmd.Context()

			storage, err := createStorage(ctx, v, l)
			if err != nil {
				return fmt.Errorf("failed to create storage: %w", err)
			}
			svr.AddClosers(func(ctx context.Context) error {
				return storage.Close()
			})

			store := repo.NewStore(storage, cfg.Name)
			overrides, err := store.Templates(ctx)
			if err != nil {
				return err
			}
			templates, err := handler.NewTemplates(overrides)
			if err != nil {
				return err
			}

			opts := []handler.SiteOption{handler.SiteWithTemplates(templates)}
			if cfg.SearchEnabled {
				index, err := search.Open(l, indexDirFlag(v))
				if err != nil {
					return err
				}
				svr.AddClosers(func(ctx context.Context) error {
					return index.Close()
				})
				opts = append(opts, handler.SiteWithSearchIndex(index))
			}

			h, err := handler.NewSite(l.Named("inst.handler"), site.New(l.Named("inst.site"), cfg, store), opts...)
			if err != nil {
				return err
			}

			isBuiltHealtherFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
				if !store.PageExists(ctx, "index") {
					return errors.New("site has not been built")
				}
				return nil
			})
			svr.AddReadinessHealthzers(isBuiltHealtherFn)

			r := chi.NewRouter()
			r.Mount(cfg.RootPath(), h)

			svr.AddServices(
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v), r,
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
	addSiteFlags(flags, v)
	addStorageFlags(flags, v)
	addServerFlags(flags, v)

	return cmd
}
