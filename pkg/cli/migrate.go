package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/repository/firestore"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var prefix string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("VATRACKER_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Value:       "(default)",
				Sources:     cli.EnvVars("VATRACKER_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix for every Firestore collection name",
				Sources:     cli.EnvVars("VATRACKER_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &prefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"prefix", prefix,
				"dryRun", dryRun)

			// Get index configuration
			indexConfig := getIndexConfig(prefix)

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig,
				fireconf.WithLogger(logger))
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				names := make([]string, 0, len(indexConfig.Collections))
				for _, c := range indexConfig.Collections {
					names = append(names, c.Name)
				}
				current, err := client.Import(ctx, names...)
				if err != nil {
					return goerr.Wrap(err, "failed to import current indexes")
				}
				diff, err := client.DiffConfigs(current)
				if err != nil {
					return goerr.Wrap(err, "failed to compare index configuration")
				}
				if logMigrationPlan(logger, diff) == 0 {
					logger.Info("No changes required")
				}
			} else {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

// logMigrationPlan logs every pending index change and returns their count
func logMigrationPlan(logger *slog.Logger, diff *fireconf.DiffResult) int {
	changes := 0
	for _, c := range diff.Collections {
		for _, idx := range c.IndexesToAdd {
			logger.Info("Index to create", "collection", c.Name, "fields", indexFields(idx))
			changes++
		}
		for _, idx := range c.IndexesToDelete {
			logger.Warn("Index to delete", "collection", c.Name, "fields", indexFields(idx))
			changes++
		}
		if c.TTLAction != "" {
			logger.Info("TTL change", "collection", c.Name, "action", string(c.TTLAction))
			changes++
		}
	}
	return changes
}

func indexFields(idx fireconf.Index) string {
	parts := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		parts = append(parts, f.Path+" "+string(f.Order))
	}
	return strings.Join(parts, ", ")
}

// getIndexConfig returns the composite indexes used by the Firestore repository.
// Equality-only queries are served by the automatic single-field indexes.
func getIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.CollectionName(prefix, "daily_activities"),
				Indexes: []fireconf.Index{
					// ListRange: user_id ==, date range, date DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "user_id", Order: fireconf.OrderAscending},
							{Path: "date", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			{
				Name: firestore.CollectionName(prefix, "goals"),
				Indexes: []fireconf.Index{
					// ListByUser: user_id ==, effective_from DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "user_id", Order: fireconf.OrderAscending},
							{Path: "effective_from", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			{
				Name: firestore.CollectionName(prefix, "team_relationships"),
				Indexes: []fireconf.Index{
					// ListActiveByBoss: boss_id ==, status ==, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "boss_id", Order: fireconf.OrderAscending},
							{Path: "status", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// FindActiveByVA: va_id ==, status ==, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "va_id", Order: fireconf.OrderAscending},
							{Path: "status", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
