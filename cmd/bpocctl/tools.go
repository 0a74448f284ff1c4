package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"bpoc/internal/csvmerge"
	"bpoc/internal/export"
	"bpoc/internal/repositories"
	"bpoc/internal/services"

	"github.com/spf13/cobra"
)

func mergeCSVCmd() *cobra.Command {
	var key, output string
	cmd := &cobra.Command{
		Use:   "merge-csv <file>...",
		Short: "merge candidate CSV files by a key column",
		Long:  "Later files win on non-empty fields. Columns are the union of all headers.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			readers := make([]io.Reader, 0, len(args))
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				readers = append(readers, f)
			}
			table, err := csvmerge.Merge(key, readers...)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := table.Write(w); err != nil {
				return fmt.Errorf("write merged csv: %w", err)
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "merged %d row(s) into %s\n", len(table.Rows), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "email", "column that identifies a candidate")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportCandidatesCmd(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-candidates",
		Short: "write active candidates and the application pipeline to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				return errors.New("--output is required")
			}
			ctx := cmd.Context()
			s, err := e.open(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			candidates, err := s.store.Candidates.Search(ctx, repositories.CandidateFilter{})
			if err != nil {
				return fmt.Errorf("list candidates: %w", err)
			}
			pipeline, err := s.store.Applications.ListSummaries(ctx)
			if err != nil {
				return fmt.Errorf("list applications: %w", err)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			stage := func(status string) (string, int) {
				p := services.StageFor(status)
				return p.Stage, p.Percent
			}
			if err := export.Workbook(f, candidates, pipeline, stage); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d candidate(s), %d application(s) to %s\n", len(candidates), len(pipeline), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "xlsx file to write")
	return cmd
}
