// Command screenplayctl runs operator tasks against the screenplay database without the HTTP server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/screenplay-backend/internal/app"
	"github.com/yungbote/screenplay-backend/internal/data/db"
	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:          "screenplayctl",
		Short:        "Operator tools for the screenplay backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	root.AddCommand(
		newSeedCmd(&envFile),
		newTokenCmd(&envFile),
		newExportCmd(&envFile),
	)
	return root
}

type env struct {
	cfg app.Config
	log *logger.Logger
	pg  *db.PostgresService
}

func (e *env) close() {
	if e.pg != nil {
		_ = e.pg.Close()
	}
	e.log.Sync()
}

func setup(envFile string, withDB bool) (*env, error) {
	cfg, err := app.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	e := &env{cfg: cfg, log: log}
	if !withDB {
		return e, nil
	}
	pg, err := db.NewPostgresService(log, cfg.Postgres())
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	e.pg = pg
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		e.close()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	return e, nil
}

func newSeedCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate the schema and upsert the built-in beat sheet templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(*envFile, true)
			if err != nil {
				return err
			}
			defer e.close()
			r := repos.NewSet(e.pg.DB(), e.log)
			if err := app.SeedTemplates(cmd.Context(), e.pg.DB(), r, e.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "templates seeded")
			return nil
		},
	}
}

func newTokenCmd(envFile *string) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			e, err := setup(*envFile, false)
			if err != nil {
				return err
			}
			defer e.close()
			tok, err := services.NewAuthService(e.log, e.cfg.JWTSecretKey, e.cfg.JWTAudience).IssueToken(uid, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (uuid)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newExportCmd(envFile *string) *cobra.Command {
	var (
		userID   string
		scriptID string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a script as Fountain text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			sid, err := uuid.Parse(scriptID)
			if err != nil {
				return fmt.Errorf("invalid --script: %w", err)
			}
			e, err := setup(*envFile, true)
			if err != nil {
				return err
			}
			defer e.close()

			gdb := e.pg.DB()
			segments := services.NewSegmentService(gdb, e.log, repos.NewSet(gdb, e.log))
			ctx := ctxutil.WithRequestData(cmd.Context(), &ctxutil.RequestData{UserID: uid})
			text, err := segments.ExportFountain(ctx, sid)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			return os.WriteFile(out, []byte(text), 0o644)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner user id (uuid)")
	cmd.Flags().StringVar(&scriptID, "script", "", "script id (uuid)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}
