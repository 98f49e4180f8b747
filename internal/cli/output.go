package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/medic/internal/present"
)

type outputFlags struct {
	mode      string
	indent    bool
	noHeaders bool
	class     string
}

func addOutputFlags(cmd *cobra.Command, o *outputFlags, def string) {
	cmd.Flags().StringVarP(&o.mode, "output", "o", def, "output mode: plain|pretty|json|ndjson|html|glamour|tui")
	cmd.Flags().BoolVar(&o.indent, "indent", false, "indent json output")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return present.Modes(), cobra.ShellCompDirectiveNoFileComp
	})
}

// options resolves the flags against config. Width and class fall back to
// render.width and render.class, then to the terminal width.
func (o outputFlags) options(cmd *cobra.Command) (present.Options, error) {
	mode, ok := present.ParseMode(o.mode)
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", o.mode)
	}
	opts := present.Options{
		Mode:       mode,
		JSONIndent: o.indent,
		Headers:    !o.noHeaders,
		Class:      o.class,
		Now:        time.Now(),
	}
	if app := appOrNil(cmd); app != nil {
		opts.Width = app.Cfg.GetInt("render.width")
		if opts.Class == "" {
			opts.Class = app.Cfg.GetString("render.class")
		}
	}
	if opts.Width == 0 {
		opts.Width = terminalWidth(cmd.OutOrStdout())
	}
	return opts, nil
}
