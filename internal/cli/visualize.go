package cli

import (
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/ironsheep/labeldb/internal/chart"
	"github.com/ironsheep/labeldb/internal/errors"
	"github.com/ironsheep/labeldb/internal/imaging"
	"github.com/ironsheep/labeldb/internal/showcase"
	"github.com/ironsheep/labeldb/internal/store"
)

func (a *App) openStore() (*store.Store, error) {
	if err := a.settings.RequireDatabase(); err != nil {
		return nil, err
	}
	return store.Open(a.settings.Paths.DatabasePath, a.log)
}

func parseColorSetting(key, value string) (color.RGBA, error) {
	c, err := imaging.ParseColor(value)
	if err != nil {
		return color.RGBA{}, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("key", key).
			Build()
	}
	return c, nil
}

func chartCommand(app *App) *cobra.Command {
	var output, title string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the class distribution of cleaned annotations as a bar chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bar, err := parseColorSetting("Output.bar_color", app.settings.Output.BarColor)
			if err != nil {
				return err
			}
			if output == "" {
				output = app.settings.Output.ChartPath
			}

			st, err := app.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := chart.Generate(cmd.Context(), st, app.fs, output, chart.Options{Title: title, BarColor: bar})
			if err != nil {
				return err
			}
			app.log.Info("chart written", "path", res.Path, "classes", res.Classes, "records", res.Total)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Loaded %d records for visualization.\n", res.Total)
			fmt.Fprintf(w, "Chart saved successfully to %s\n", res.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG path (default Output.chart_path)")
	cmd.Flags().StringVar(&title, "title", chart.DefaultTitle, "Chart title")
	return cmd
}

func showcaseCommand(app *App) *cobra.Command {
	var (
		output string
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "showcase",
		Short: "Draw one random cleaned annotation on its source image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boxColor, err := parseColorSetting("Output.box_color", app.settings.Output.BoxColor)
			if err != nil {
				return err
			}
			if output == "" {
				output = app.settings.Output.ShowcasePath
			}

			opts := showcase.Options{BoxColor: boxColor, Thickness: app.settings.Output.BoxWidth}
			if cmd.Flags().Changed("seed") {
				opts.Rand = rand.New(rand.NewPCG(seed, seed))
			}

			sc := showcase.New(app.settings.Paths.DatasetRoot, imaging.NewImageCache(app.fs), app.log)
			if err := sc.CheckRoot(); err != nil {
				return err
			}

			st, err := app.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := sc.Generate(cmd.Context(), st, output, opts)
			if err != nil {
				return err
			}
			app.log.Info("showcase written",
				"path", res.OutputPath,
				"image", res.ImagePath,
				"class_id", res.Annotation.ClassID)

			fmt.Fprintf(cmd.OutOrStdout(), "Bounding box example saved successfully to %s\n", res.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG path (default Output.showcase_path)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a repeatable pick")
	return cmd
}
