package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/config"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/db"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/db/repository"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/genelookup"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/graphload"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/kgx"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/pipeline"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/storage"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/tabular"
)

// runOptions are the pipeline flags shared by run and schedule.
type runOptions struct {
	configPath  string
	publish     string
	noLoad      bool
	parallelism int
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", config.DefaultPipelineFile, "Pipeline file")
	cmd.Flags().StringVar(&o.publish, "publish", "", "Publish target URI (overrides the file and MIDAS_PUBLISH_URI)")
	cmd.Flags().BoolVar(&o.noLoad, "no-load", false, "Skip the Neo4j load stage even when NEO4J_URI is set")
	cmd.Flags().IntVar(&o.parallelism, "parallelism", pipeline.DefaultParallelism, "Stages run concurrently within a level")
}

func newPipelineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the full ingestion pipeline",
	}
	cmd.AddCommand(newPipelineRunCmd(a))
	cmd.AddCommand(newPipelineScheduleCmd(a))
	return cmd
}

func newPipelineRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every stage of the pipeline once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pf, err := config.LoadPipelineFile(opts.configPath)
			if err != nil {
				return err
			}
			ledger, err := db.OpenLedger(ctx, a.cfg.LedgerPath, a.logger)
			if err != nil {
				return err
			}
			defer ledger.Close() //nolint:errcheck

			runs := repository.NewRunRepo(ledger)
			run, runErr := runPipeline(ctx, a, pf, opts, runs)
			if run != nil {
				if err := printRun(cmd, runs, run); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	opts.bind(cmd)

	return cmd
}

func newPipelineScheduleCmd(a *app) *cobra.Command {
	var (
		opts     runOptions
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pf, err := config.LoadPipelineFile(opts.configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ledger, err := db.OpenLedger(ctx, a.cfg.LedgerPath, a.logger)
			if err != nil {
				return err
			}
			defer ledger.Close() //nolint:errcheck
			runs := repository.NewRunRepo(ledger)

			sched := pipeline.NewScheduler(ctx, a.logger)
			err = sched.Add(pf.GraphID, schedule, func(ctx context.Context) error {
				_, err := runPipeline(ctx, a, pf, opts, runs)
				return err
			})
			if err != nil {
				return err
			}
			sched.Start()
			<-ctx.Done()
			sched.Stop()
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&schedule, "cron", "", "Cron expression, e.g. \"0 3 * * *\" or \"@daily\"")
	markRequired(cmd, "cron")

	return cmd
}

// runPipeline wires the standard stage graph for pf and executes it once.
func runPipeline(ctx context.Context, a *app, pf *config.PipelineFile, opts runOptions, runs domain.RunRepository) (*domain.Run, error) {
	reader, err := tabular.OpenReader(a.logger)
	if err != nil {
		return nil, err
	}
	defer reader.Close() //nolint:errcheck

	target := firstNonEmpty(opts.publish, pf.Publish.Target, a.cfg.PublishURI)
	var publisher storage.Publisher
	if target != "" {
		publisher, err = storage.NewPublisher(ctx, target, a.cfg.StorageCredentials())
		if err != nil {
			return nil, fmt.Errorf("publish target: %w", err)
		}
		if c, ok := publisher.(io.Closer); ok {
			defer c.Close() //nolint:errcheck
		}
	}

	var loader pipeline.GraphLoader
	if gc := a.cfg.Graph(); gc.Enabled() && !opts.noLoad {
		client, err := graphload.NewClient(ctx, gc, a.logger)
		if err != nil {
			return nil, err
		}
		defer client.Close(context.WithoutCancel(ctx)) //nolint:errcheck
		loader = graphload.NewLoader(client, graphload.DefaultBatchSize, 0, a.logger)
	}

	genes := genelookup.New(a.cfg.GeneLookup(), a.logger)
	std := pipeline.NewStandard(*pf, reader, genes, publisher, loader, a.logger)
	return pipeline.NewRunner(runs, opts.parallelism, a.logger).Execute(ctx, pf.GraphID, std.Stages())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run ledger",
	}
	cmd.AddCommand(newRunsListCmd(a))
	cmd.AddCommand(newRunsShowCmd(a))
	return cmd
}

// openLedger opens the ledger for a read-only command.
func openLedger(cmd *cobra.Command, a *app) (*sql.DB, *repository.RunRepo, error) {
	ledger, err := db.OpenLedger(cmd.Context(), a.cfg.LedgerPath, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return ledger, repository.NewRunRepo(ledger), nil
}

func newRunsListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("invalid --limit %d: must be positive", limit)
			}
			ledger, runs, err := openLedger(cmd, a)
			if err != nil {
				return err
			}
			defer ledger.Close() //nolint:errcheck

			list, err := runs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), list)
			}
			rows := make([][]string, 0, len(list))
			for _, r := range list {
				rows = append(rows, []string{
					r.ID, r.GraphID, r.Status, formatTime(&r.StartedAt), formatTime(r.FinishedAt), deref(r.ErrorMessage),
				})
			}
			return printTable(cmd.OutOrStdout(), []string{"RUN ID", "GRAPH", "STATUS", "STARTED", "FINISHED", "ERROR"}, rows)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

func newRunsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a run and its stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, runs, err := openLedger(cmd, a)
			if err != nil {
				return err
			}
			defer ledger.Close() //nolint:errcheck

			run, err := runs.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRun(cmd, runs, run)
		},
	}
}

// printRun prints a run header followed by its stage table.
func printRun(cmd *cobra.Command, runs domain.RunRepository, run *domain.Run) error {
	stages, err := runs.ListStageRuns(cmd.Context(), run.ID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if getOutputFormat(cmd) == "json" {
		return printJSON(out, map[string]any{"run": run, "stages": stages})
	}
	_, _ = fmt.Fprintf(out, "Run %s (%s): %s\n", run.ID, run.GraphID, run.Status)
	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		rows = append(rows, []string{
			s.Stage, s.Status, strconv.Itoa(s.RowsOut), formatTime(s.StartedAt), formatTime(s.FinishedAt), deref(s.ErrorMessage),
		})
	}
	return printTable(out, []string{"STAGE", "STATUS", "ROWS", "STARTED", "FINISHED", "ERROR"}, rows)
}

func newPublishCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "publish --target URI FILE...",
		Short: "Upload files to a local directory or object store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			ctx := cmd.Context()
			p, err := storage.NewPublisher(ctx, target, a.cfg.StorageCredentials())
			if err != nil {
				return err
			}
			if c, ok := p.(io.Closer); ok {
				defer c.Close() //nolint:errcheck
			}
			locations, err := storage.PublishAll(ctx, p, files, a.logger)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), locations)
			}
			for _, l := range locations {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Target URI: directory, file://, s3://, gs://, az://")
	markRequired(cmd, "target")

	return cmd
}

func newLoadCmd(a *app) *cobra.Command {
	var (
		nodesPath string
		edgesPath string
		batchSize int
		rate      float64
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load KGX JSON Lines files into Neo4j",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gc := a.cfg.Graph()
			if !gc.Enabled() {
				return domain.ErrValidation("NEO4J_URI is not set")
			}
			if gc.Password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
				pw, err := promptPassword(cmd.ErrOrStderr(), gc.User)
				if err != nil {
					return err
				}
				gc.Password = pw
			}

			nodes, err := kgx.ReadNodes(nodesPath)
			if err != nil {
				return err
			}
			edges, err := kgx.ReadEdges(edgesPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := graphload.NewClient(ctx, gc, a.logger)
			if err != nil {
				return err
			}
			defer client.Close(context.WithoutCancel(ctx)) //nolint:errcheck

			st, err := graphload.NewLoader(client, batchSize, rate, a.logger).Load(ctx, nodes, edges)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), st)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d nodes and %d edges in %d batches\n", st.Nodes, st.Edges, st.Batches)
			return nil
		},
	}
	cmd.Flags().StringVar(&nodesPath, "nodes", "", "KGX nodes JSON Lines file")
	cmd.Flags().StringVar(&edgesPath, "edges", "", "KGX edges JSON Lines file")
	cmd.Flags().IntVar(&batchSize, "batch-size", graphload.DefaultBatchSize, "Rows per write transaction")
	cmd.Flags().Float64Var(&rate, "batches-per-second", 0, "Throttle write transactions (0 = unlimited)")
	markRequired(cmd, "nodes", "edges")

	return cmd
}

// promptPassword reads the Neo4j password from the terminal without echo.
func promptPassword(w io.Writer, user string) (string, error) {
	if user == "" {
		user = "neo4j"
	}
	_, _ = fmt.Fprintf(w, "Neo4j password for %s: ", user)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
