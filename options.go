package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shelterhq/shelter-api/app"
	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/migration"
	"github.com/shelterhq/shelter-api/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type commandLineOptions struct {
	ConfigName string
	ConfigPath string
}

func NewRootCommand() *cobra.Command {
	opts := &commandLineOptions{}

	cmd := &cobra.Command{
		Use:           "shelter-api",
		Short:         "Animal shelter dashboard API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigName, "config-name", "", "config file name without extension")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config-path", "", "directory holding the config file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	return cmd
}

func newServeCommand(opts *commandLineOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			restApp, err := app.NewRestApp(opts.ConfigName, opts.ConfigPath)
			if err != nil {
				return err
			}
			restApp.Run()
			return nil
		},
	}
}

// newSeedCommand loads a JSON array of animal outcome records into the
// database, applying the indexes first. Used to bootstrap a dashboard from
// the shelter outcome dataset export.
func newSeedCommand(opts *commandLineOptions) *cobra.Command {
	var dataFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import animal records from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataFile == "" {
				return fmt.Errorf("--file is required")
			}

			repoModule, err := app.RepoModule(opts.ConfigName, opts.ConfigPath)
			if err != nil {
				return err
			}

			var repo domain.Repository
			fxApp := fx.New(
				repoModule,
				fx.Invoke(migration.RunMongoMigration),
				fx.Populate(&repo),
				fx.NopLogger,
			)

			ctx := cmd.Context()
			if err := fxApp.Start(ctx); err != nil {
				return err
			}
			defer fxApp.Stop(ctx)

			return seedAnimals(ctx, repo, dataFile)
		},
	}
	cmd.Flags().StringVar(&dataFile, "file", "", "path to the JSON export")
	return cmd
}

func seedAnimals(ctx context.Context, repo domain.Repository, dataFile string) error {
	raw, err := os.ReadFile(dataFile)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var animals []*domain.Animal
	if err := json.Unmarshal(raw, &animals); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	imported := 0
	for _, animal := range animals {
		if animal.AnimalID == "" || animal.AnimalType == "" || animal.Breed == "" {
			continue
		}
		animal.BaseEntity = domain.NewBaseEntity()
		if err := repo.CreateAnimal(ctx, animal); err != nil {
			return fmt.Errorf("import animal %s: %w", animal.AnimalID, err)
		}
		imported++
	}

	logger.Logger(ctx).Info().
		Int("imported", imported).
		Int("skipped", len(animals)-imported).
		Msg("seed finished")
	return nil
}
