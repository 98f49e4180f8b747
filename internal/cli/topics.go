package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/medic/internal/present"
	"github.com/mithrel/medic/internal/prompts"
	"github.com/mithrel/medic/pkg/api"
)

func newTopicsCmd() *cobra.Command {
	var out outputFlags
	var n int
	var show bool
	cmd := &cobra.Command{
		Use:   "topics [query]",
		Short: "List or search knowledge-base topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			topics := prompts.SearchTopics(strings.Join(args, " "), n)
			if !show {
				return present.RenderTopics(cmd.OutOrStdout(), topics, opts)
			}
			if len(topics) == 0 {
				return fmt.Errorf("no topic matches %q", strings.Join(args, " "))
			}
			doc, _ := prompts.TopicBody(topics[0].Title)
			if opts.Mode == present.ModeGlamour || opts.Mode == present.ModeTUI {
				opts.Mode = present.ModePretty
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderDocument(w, "", doc, opts)
			})
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return topicTitles(prompts.SearchTopics(toComplete, 0)), cobra.ShellCompDirectiveNoFileComp
		},
	}
	addOutputFlags(cmd, &out, "plain")
	cmd.Flags().IntVarP(&n, "limit", "n", 0, "maximum topics to list (0 = all)")
	cmd.Flags().BoolVar(&show, "show", false, "print the best match's knowledge-base section")
	return cmd
}

func topicTitles(topics []api.Topic) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.Title)
	}
	return out
}
