package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/labeldb/internal/pipeline"
)

func (a *App) newPipeline() (*pipeline.Pipeline, error) {
	if err := a.settings.RequireDatabase(); err != nil {
		return nil, err
	}
	return pipeline.New(a.fs, a.settings.Paths.DatasetRoot, a.settings.Paths.DatabasePath, a.log), nil
}

func printIngest(w io.Writer, res *pipeline.IngestResult) {
	fmt.Fprintf(w, "Successfully loaded %d records from %d images into 'raw_annotations' in %s\n",
		res.Records, res.Images, res.Database)
	if res.SkippedLines > 0 {
		fmt.Fprintf(w, "Skipped %d malformed lines\n", res.SkippedLines)
	}
	if res.FileErrors > 0 {
		fmt.Fprintf(w, "Could not read %d label files\n", res.FileErrors)
	}
}

func printClean(w io.Writer, res *pipeline.CleanResult) {
	r := res.Report
	fmt.Fprintf(w, "Cleaned %d raw records into %d rows in 'cleaned_annotations'\n", r.Input, r.Output)
	fmt.Fprintf(w, "  missing values:   %d\n", r.Missing)
	fmt.Fprintf(w, "  unparseable:      %d\n", r.Unparseable)
	fmt.Fprintf(w, "  out of range:     %d\n", r.OutOfRange)
	fmt.Fprintf(w, "  duplicates:       %d\n", r.Duplicates)
}

func ingestCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Load label files into the raw_annotations table",
		Long: "Scans {dataset_root}/{train,test,valid}/labels/*.txt and writes every line with\n" +
			"exactly five fields to a freshly created database.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.newPipeline()
			if err != nil {
				return err
			}
			res, err := p.Ingest(cmd.Context())
			if err != nil {
				return err
			}
			printIngest(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func cleanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Rebuild cleaned_annotations from raw_annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.newPipeline()
			if err != nil {
				return err
			}
			res, err := p.Clean(cmd.Context())
			if err != nil {
				return err
			}
			printClean(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func processCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Run ingest followed by clean",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.newPipeline()
			if err != nil {
				return err
			}
			res, err := p.Process(cmd.Context())
			if res != nil && res.Ingest != nil {
				printIngest(cmd.OutOrStdout(), res.Ingest)
			}
			if err != nil {
				return err
			}
			printClean(cmd.OutOrStdout(), res.Clean)
			return nil
		},
	}
}
