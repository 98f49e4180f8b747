package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/internal/present"
	"github.com/mithrel/medic/internal/present/format"
)

func newRenderCmd() *cobra.Command {
	var out outputFlags
	var outline bool
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render markdown with the built-in engine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			if opts.Mode == present.ModeTUI {
				return errors.New("render has no tui mode")
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			source, err := readSource(cmd, path)
			if err != nil {
				return err
			}
			doc := markdown.Render(source)
			if outline {
				return format.WriteJSON(cmd.OutOrStdout(), doc.Outline(), opts.JSONIndent)
			}
			if opts.Mode != present.ModePretty && opts.Mode != present.ModeGlamour {
				return present.RenderDocument(cmd.OutOrStdout(), source, doc, opts)
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderDocument(w, source, doc, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "pretty")
	cmd.Flags().StringVar(&out.class, "class", "", "css class on the html wrapper (overrides render.class)")
	cmd.Flags().BoolVar(&outline, "outline", false, "print the heading outline as json")
	return cmd
}
