package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/applicant-reviewer/applicants"
	"github.com/danielhkuo/applicant-reviewer/backup"
	"github.com/danielhkuo/applicant-reviewer/cliparse"
	"github.com/danielhkuo/applicant-reviewer/db"
	"github.com/danielhkuo/applicant-reviewer/router"
	"github.com/danielhkuo/applicant-reviewer/session"
	"github.com/danielhkuo/applicant-reviewer/sheetsource"
	"github.com/danielhkuo/applicant-reviewer/store"
)

const sweepInterval = time.Hour

var cfg cliparse.Config

func main() {
	rootCmd := &cobra.Command{
		Use:           "applicant-reviewer",
		Short:         "Review spreadsheet applicants with votes and selections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cliparse.LoadDotEnv(); err != nil {
				return err
			}
			return cliparse.ApplyEnv(&cfg)
		},
	}
	cliparse.RegisterFlags(rootCmd.PersistentFlags(), &cfg)

	rootCmd.AddCommand(serveCmd(), migrateCmd(), backupCmd(), exportCmd())

	// No subcommand means serve
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = serveCmd().RunE

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// openStore connects, creates the schema and wraps the connection.
func openStore(ctx context.Context) (*store.Store, *sql.DB, error) {
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := db.CreateSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("database schema ready", "type", dialect)

	return store.New(conn, dialect), conn, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateServer(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, conn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			source, err := sheetsource.New(ctx, cfg)
			if err != nil {
				return err
			}

			guard := session.NewGuard(st, session.Config{
				AllowedEmail: cfg.AllowedEmail,
				Secret:       cfg.SessionSecret,
				TTL:          cfg.SessionTTL,
				Secure:       cfg.SecureCookies,
			}, nil)
			go guard.Sweep(ctx, sweepInterval)

			handler := router.NewHandler(router.Deps{
				Store:    st,
				Source:   source,
				Guard:    guard,
				Provider: session.NewGoogleProvider(cfg),
				Config:   cfg,
			})

			server := http.Server{
				Handler:           handler,
				Addr:              ":" + strconv.Itoa(cfg.Port),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				// Wait for Ctrl-C or SIGTERM
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			slog.Info("listening",
				"port", cfg.Port,
				"session_ttl", cfg.SessionTTL,
				"origins", cfg.AllowedOrigins(),
			)
			err = server.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server closed: %w", err)
			}
			slog.Info("server closed")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <data.json[.gz]>",
		Short: "Import a data.json file from the file-backed server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			snap, err := backup.ReadFile(args[0])
			if err != nil {
				return err
			}

			st, conn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			rep, err := backup.Restore(ctx, st, snap, nil)
			if err != nil {
				return fmt.Errorf("migration stopped: %w", err)
			}

			slog.Info("migration complete",
				"sheets", humanize.Comma(int64(rep.Sheets)),
				"votes", humanize.Comma(int64(rep.Votes)),
				"selections", humanize.Comma(int64(rep.Selections)),
				"notes", humanize.Comma(int64(rep.Notes)),
				"skipped", humanize.Comma(int64(rep.Skipped)),
			)
			return nil
		},
	}
}

func backupCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write every sheet, vote, selection and note to a JSON file or gs:// object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, conn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			snap, err := backup.Take(ctx, st)
			if err != nil {
				return err
			}

			if out == "" {
				out = "applicant-reviewer-" + snap.LastUpdated.Format("20060102-150405") + ".json"
			}

			data, err := snap.Bytes(out)
			if err != nil {
				return err
			}

			written, err := backup.Save(ctx, out, data)
			if err != nil {
				return err
			}
			if !written {
				return fmt.Errorf("%s already exists", out)
			}

			slog.Info("backup written",
				"target", out,
				"size", humanize.Bytes(uint64(len(data))),
				"sheets", len(snap.Sheets),
				"voted_applicants", humanize.Comma(int64(len(snap.Votes))),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Backup file path or gs://bucket/object (.gz to compress)")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <sheetId>",
		Short: "Write a sheet's ranked applicants to an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := cfg.ValidateSheets(); err != nil {
				return err
			}

			st, conn, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			source, err := sheetsource.New(ctx, cfg)
			if err != nil {
				return err
			}

			sheet, err := st.GetSheet(ctx, args[0])
			if err != nil {
				return err
			}

			rv := backup.Review{Sheet: sheet}
			rv.Applicants, err = applicants.NewAggregator(source, st, nil).Aggregate(ctx, sheet)
			if err != nil {
				return err
			}
			if rv.Votes, err = st.Tally(ctx, sheet.ID); err != nil {
				return err
			}
			if rv.Selections, err = st.Selections(ctx, sheet.ID); err != nil {
				return err
			}
			if rv.Notes, err = st.Notes(ctx, sheet.ID); err != nil {
				return err
			}

			f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			if err := backup.ExportXLSX(f, rv); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			slog.Info("export written",
				"path", out,
				"title", sheet.Title,
				"roles", len(rv.Applicants.Roles),
				"applicants", humanize.Comma(int64(rv.Applicants.TotalApplicants)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output .xlsx path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
