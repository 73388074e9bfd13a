package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgraster"
)

func newDimsCmd() *cobra.Command {
	var (
		id  string
		dpi float64
	)

	cmd := &cobra.Command{
		Use:   "dims [file]",
		Short: "Print the size of a document, or of one of its elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)
			if cmd.Flags().Changed("dpi") {
				cfg.Render.DPI = dpi
			}
			shaper, err := newShaper(cfg.Text, logger)
			if err != nil {
				return err
			}

			doc, err := svgdoc.ReadFile(args[0], svgdoc.WithLogger(logger))
			if err != nil {
				return err
			}
			size, err := svgraster.Dimensions(doc, id,
				svgraster.WithLogger(logger),
				svgraster.WithDPI(cfg.Render.DPI),
				svgraster.WithShaper(shaper),
			)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%g %g\n", size.W, size.H)
			return err
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "measure the element with this id")
	cmd.Flags().Float64Var(&dpi, "dpi", 0, "resolution used for physical units")

	return cmd
}
