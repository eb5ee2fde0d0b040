package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/cbioportal"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/civic"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/genelookup"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/tabular"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/therapy"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/variants"
)

func markRequired(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		_ = cmd.MarkFlagRequired(n)
	}
}

func newCIViCCmd(a *app) *cobra.Command {
	var (
		in       civic.Inputs
		output   string
		explode  bool
		therapyR string
	)

	cmd := &cobra.Command{
		Use:   "civic",
		Short: "Join and normalise the CIViC summary dumps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader, err := tabular.OpenReader(a.logger)
			if err != nil {
				return err
			}
			defer reader.Close() //nolint:errcheck

			ctx := cmd.Context()
			recs, err := civic.NewService(reader, a.logger).Extract(ctx, in, civic.Options{ExplodeTherapies: explode})
			if err != nil {
				return err
			}
			if therapyR != "" {
				ref, err := reader.Select(ctx, therapyR, therapy.ReferenceNameColumn, therapy.ReferenceCodeColumn)
				if err != nil {
					return fmt.Errorf("load therapy reference: %w", err)
				}
				m, err := therapy.NewMatcherFromTable(ref, "", "")
				if err != nil {
					return err
				}
				resolved := therapy.MapRecords(recs, m)
				a.logger.Info("therapies mapped", "records", len(recs), "resolved", resolved)
			}
			if err := tabular.WriteFile(output, tabular.JoinedTable(output, recs, therapyR != "")); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(recs), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.ClinicalEvidence, "clinical", "", "Clinical evidence summary TSV")
	cmd.Flags().StringVar(&in.MolecularProfiles, "profiles", "", "Molecular profile summary TSV")
	cmd.Flags().StringVar(&in.Variants, "variants", "", "Variant summary TSV")
	cmd.Flags().StringVar(&in.Features, "features", "", "Feature summary TSV")
	cmd.Flags().StringVar(&output, "output", "", "Output file (.tsv or .csv)")
	cmd.Flags().BoolVar(&explode, "explode-therapies", false, "Emit one row per listed therapy")
	cmd.Flags().StringVar(&therapyR, "therapy-ref", "", "NCIT therapy reference; adds ncit_* columns")
	markRequired(cmd, "clinical", "profiles", "variants", "features", "output")

	return cmd
}

func newTherapyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "therapy",
		Short: "Therapy name to NCIT code mapping",
	}
	cmd.AddCommand(newTherapyMapCmd(a))
	return cmd
}

func newTherapyMapCmd(a *app) *cobra.Command {
	var (
		reference string
		input     string
		output    string
		nameCol   string
		codeCol   string
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Add NCIT codes to the therapy column of a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader, err := tabular.OpenReader(a.logger)
			if err != nil {
				return err
			}
			defer reader.Close() //nolint:errcheck

			ctx := cmd.Context()
			ref, err := reader.Select(ctx, reference, nameCol, codeCol)
			if err != nil {
				return fmt.Errorf("load therapy reference: %w", err)
			}
			m, err := therapy.NewMatcherFromTable(ref, nameCol, codeCol)
			if err != nil {
				return err
			}
			combos, tokens := m.Stats()
			a.logger.Info("therapy reference indexed", "combos", combos, "tokens", tokens)

			t, err := reader.Read(ctx, input)
			if err != nil {
				return fmt.Errorf("load input: %w", err)
			}
			if err := therapy.MapTable(t, m); err != nil {
				return err
			}
			if err := tabular.WriteFile(output, t); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(t.Rows), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "Reference table with therapy names and NCIT codes")
	cmd.Flags().StringVar(&input, "input", "", "Table with a therapy or therapies column")
	cmd.Flags().StringVar(&output, "output", "", "Output file")
	cmd.Flags().StringVar(&nameCol, "name-column", therapy.ReferenceNameColumn, "Reference column holding therapy names")
	cmd.Flags().StringVar(&codeCol, "code-column", therapy.ReferenceCodeColumn, "Reference column holding NCIT codes")
	markRequired(cmd, "reference", "input", "output")

	return cmd
}

func newCBioPortalCmd(a *app) *cobra.Command {
	var (
		shards   string
		studyMap string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "cbioportal",
		Short: "Aggregate cBioPortal mutation shards into gene/disease associations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genes := genelookup.New(a.cfg.GeneLookup(), a.logger)
			n, err := cbioportal.NewService(genes, a.logger).Run(cmd.Context(), shards, studyMap, output)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d associations to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&shards, "shards", "", "Glob matching the mutation JSON shards")
	cmd.Flags().StringVar(&studyMap, "study-map", "", "JSON object mapping study id to DOID")
	cmd.Flags().StringVar(&output, "output", "", "Output JSON file")
	markRequired(cmd, "shards", "study-map", "output")

	return cmd
}

func newVariantsCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "Extract canonical variants from 1000 Genomes annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := variants.NewExtractor(a.logger).Run(input, output)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d variants to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Annotated variants JSON array")
	cmd.Flags().StringVar(&output, "output", "", "Output JSON file")
	markRequired(cmd, "input", "output")

	return cmd
}
