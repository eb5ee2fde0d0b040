package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/bulk"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/identifier"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/kgx"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/tabular"
)

func newKGXCmd(a *app) *cobra.Command {
	var (
		src     kgx.Sources
		outDir  string
		graphID string
	)

	cmd := &cobra.Command{
		Use:   "kgx",
		Short: "Project extracted sources into a KGX graph and export it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if src.CIViC == "" && src.CBioPortal == "" && src.Variants == "" {
				return domain.ErrValidation("at least one of --civic, --cbioportal, --variants is required")
			}
			reader, err := tabular.OpenReader(a.logger)
			if err != nil {
				return err
			}
			defer reader.Close() //nolint:errcheck

			g, err := kgx.NewBuilder(reader, a.logger).Build(cmd.Context(), graphID, src)
			if err != nil {
				return err
			}
			artifacts, err := kgx.Export(outDir, g)
			if err != nil {
				return err
			}

			sum := g.Summarize()
			if len(sum.DanglingIDs) > 0 {
				a.logger.Warn("edges reference unknown nodes", "count", len(sum.DanglingIDs))
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"summary":   sum,
					"artifacts": artifacts.Paths(),
				})
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Graph %s: %d nodes, %d edges\n", sum.GraphID, sum.NodeCount, sum.EdgeCount)
			for _, p := range artifacts.Paths() {
				_, _ = fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&src.CIViC, "civic", "", "Joined CIViC TSV (from 'midas civic')")
	cmd.Flags().StringVar(&src.CBioPortal, "cbioportal", "", "Gene/disease JSON (from 'midas cbioportal')")
	cmd.Flags().StringVar(&src.Variants, "variants", "", "Canonical variants JSON (from 'midas variants')")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the graph artifacts")
	cmd.Flags().StringVar(&graphID, "graph-id", "midas", "Graph id, used as the artifact file prefix")
	markRequired(cmd, "out-dir")

	return cmd
}

func newBulkCmd(a *app) *cobra.Command {
	var (
		input  string
		output string
		kind   string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Convert a neo4j-admin TSV export into a Neptune bulk-load CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := bulk.ParseKind(kind)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("test") && limit <= 0 {
				return fmt.Errorf("invalid --test %d: must be a positive record count", limit)
			}
			if _, err := bulk.NewNeptuneConverter(k, limit, a.logger).ConvertFile(input, output); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Conversion complete: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "neo4j-admin TSV export")
	cmd.Flags().StringVar(&output, "output", "", "Neptune CSV to write")
	cmd.Flags().StringVar(&kind, "type", "", "File kind: nodes or edges")
	cmd.Flags().IntVar(&limit, "test", 0, "Write only the first N records")
	markRequired(cmd, "input", "output", "type")

	return cmd
}

func newFixHeadersCmd(a *app) *cobra.Command {
	var (
		input  string
		output string
		kind   string
	)

	cmd := &cobra.Command{
		Use:   "fix-headers",
		Short: "Rewrite a merged graph export into Neptune column names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := bulk.ParseKind(kind)
			if err != nil {
				return err
			}
			n, err := bulk.NewHeaderFixer(k, a.logger).ConvertFile(input, output)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Comma-separated graph export")
	cmd.Flags().StringVar(&output, "output", "", "CSV to write")
	cmd.Flags().StringVar(&kind, "type", "", "File kind: nodes or edges")
	markRequired(cmd, "input", "output", "type")

	return cmd
}

func newNormalizeCmd() *cobra.Command {
	var namespace, value string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalise one identifier (doid, ca, ncbigene, ncit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, ok, err := identifier.Normalize(namespace, value)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				res := map[string]any{"input": value, "valid": ok}
				if ok {
					res["id"] = id.String()
				}
				return printJSON(cmd.OutOrStdout(), res)
			}
			if !ok {
				return domain.ErrValidation("%q is not a valid %s identifier", value, namespace)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "Identifier namespace: doid, ca, ncbigene, ncit")
	cmd.Flags().StringVar(&value, "value", "", "Raw identifier value")
	markRequired(cmd, "namespace", "value")

	return cmd
}
