package cmd

import (
	"fmt"

	"github.com/foomo/docsite/pkg/build"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/foomo/docsite/pkg/site"
	"github.com/foomo/docsite/pkg/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func NewBuildCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render a site source into the storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			l := zap.L().Named("build")
			ctx := cmd.Context()

			cfg, err := siteConfig(v)
			if err != nil {
				return err
			}

			storage, err := createStorage(ctx, v, l)
			if err != nil {
				return fmt.Errorf("failed to create storage: %w", err)
			}
			defer storage.Close()

			opts := []build.BuilderOption{build.BuilderWithIndexDir(indexDirFlag(v))}
			staticStorage, err := createStaticStorage(ctx, v)
			if err != nil {
				return err
			} else if staticStorage != nil {
				defer staticStorage.Close()
				opts = append(opts, build.BuilderWithStaticStorage(staticStorage))
			}

			src, err := source.New(l, cfg)
			if err != nil {
				return err
			}

			res, err := build.NewBuilder(l, cfg, src, repo.NewStore(storage, cfg.Name), opts...).Build(ctx)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	}

	flags := cmd.Flags()
	addSiteFlags(flags, v)
	addStaticBucketFlag(flags, v)
	addStorageFlags(flags, v)

	return cmd
}

// siteConfig site configuration from flags and environment
func siteConfig(v *viper.Viper) (site.Config, error) {
	cfg := site.Config{
		Name:           siteNameFlag(v),
		HumanName:      siteHumanNameFlag(v),
		HumanShortName: siteHumanShortNameFlag(v),
		URLPrefix:      siteURLPrefixFlag(v),
		SourcePath:     siteSourcePathFlag(v),
		StaticURL:      siteStaticURLFlag(v),
		SearchEnabled:  siteSearchFlag(v),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid site configuration: %w", err)
	}
	return cfg, nil
}
