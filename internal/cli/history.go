package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/medic/internal/present"
	"github.com/mithrel/medic/internal/present/tui"
	"github.com/mithrel/medic/internal/util"
	"github.com/mithrel/medic/pkg/api"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded chats and encounter analyses",
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var out outputFlags
	var kind string
	var limit int
	var all bool
	var since, until string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded exchanges, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if !cmd.Flags().Changed("output") && !stdoutIsTerminal(cmd) {
				out.mode = "plain"
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			from, to, err := util.TimeRange(since, until, time.Now())
			if err != nil {
				return err
			}
			q := api.ListQuery{Kind: k, Limit: limit, Since: from, Until: to}

			if opts.Mode == present.ModeTUI {
				return tui.BrowseHistory(cmd.Context(), app.Store, q, opts.Headers)
			}
			if !all {
				items, page, err := app.Store.List(cmd.Context(), q)
				if err != nil {
					return err
				}
				if err := present.RenderExchanges(cmd.OutOrStdout(), items, page, opts); err != nil {
					return err
				}
				if page.Next != "" && opts.Mode == present.ModePlain && stdoutIsTerminal(cmd) {
					fmt.Fprintln(cmd.ErrOrStderr(), "(more; use --all)")
				}
				return nil
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return streamHistory(cmd.Context(), app.Store, q, newExchangeStreamWriter(w, opts))
			})
		},
	}
	addOutputFlags(cmd, &out, "tui")
	cmd.Flags().StringVar(&kind, "kind", "", "only list chat or encounter")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "page size (0 = store default)")
	cmd.Flags().BoolVar(&all, "all", false, "follow cursors through every page")
	cmd.Flags().StringVar(&since, "since", "", "only exchanges at or after this time (e.g. 2h, 3d, 1w, 2006-01-02)")
	cmd.Flags().StringVar(&until, "until", "", "only exchanges before this time")
	cmd.Flags().BoolVar(&out.noHeaders, "noheaders", false, "hide column headers (plain/tui)")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(api.KindChat), string(api.KindEncounter)}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded exchange",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			if opts.Mode == present.ModeTUI {
				opts.Mode = present.ModePretty
			}
			e, err := app.Store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("history %s: %w", args[0], err)
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderExchange(w, e, opts)
			})
		},
		ValidArgsFunction: completeExchangeIDs,
	}
	addOutputFlags(cmd, &out, "pretty")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete recorded exchanges",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			for _, id := range args {
				if err := app.Store.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("history %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return nil
		},
		ValidArgsFunction: completeExchangeIDs,
	}
	return cmd
}

func parseKind(s string) (api.Kind, error) {
	switch api.Kind(s) {
	case "", api.KindChat, api.KindEncounter:
		return api.Kind(s), nil
	}
	return "", fmt.Errorf("invalid --kind: %s", s)
}

func stdoutIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
