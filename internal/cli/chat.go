package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/medic/internal/present"
	"github.com/mithrel/medic/internal/present/tui"
	"github.com/mithrel/medic/internal/prompts"
	"github.com/mithrel/medic/pkg/api"
)

func newChatCmd() *cobra.Command {
	var out outputFlags
	var interactive bool
	cmd := &cobra.Command{
		Use:   "chat [question...]",
		Short: "Ask the study buddy a question",
		Long: "Ask one question and print the answer, or start an interactive chat " +
			"with --tui (the default when no question is given on a terminal).",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" && !interactive && !stdinIsTerminal(cmd) {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				question = strings.TrimSpace(string(b))
			}
			if interactive || opts.Mode == present.ModeTUI || question == "" {
				ask := func(ctx context.Context, msgs []api.Message) (string, error) {
					res, err := app.Assistant.Chat(ctx, msgs)
					return res.Reply, err
				}
				return tui.RunChat(cmd.Context(), ask, prompts.Suggestions())
			}

			res, err := app.Assistant.Chat(cmd.Context(), []api.Message{{Role: api.RoleUser, Content: question}})
			if err != nil {
				return err
			}
			return present.RenderDocument(cmd.OutOrStdout(), res.Reply, res.Doc, opts)
		},
	}
	addOutputFlags(cmd, &out, "pretty")
	cmd.Flags().BoolVar(&interactive, "tui", false, "start an interactive chat")
	return cmd
}

func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
