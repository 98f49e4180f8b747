package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/medic/internal/editor"
	"github.com/mithrel/medic/internal/present"
)

var errNoInput = errors.New("no input; pass a file, '-' for stdin, or --edit")

func newAnalyzeCmd() *cobra.Command {
	var out outputFlags
	var edit bool
	var scenario string
	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Get feedback on a patient encounter transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			var transcript string
			switch {
			case len(args) == 1:
				transcript, err = readSource(cmd, args[0])
			case edit:
				transcript, err = editTranscript(scenario, "")
			case !stdinIsTerminal(cmd):
				transcript, err = readSource(cmd, "-")
			default:
				return errNoInput
			}
			if err != nil {
				return err
			}
			if edit && len(args) == 1 {
				if transcript, err = editTranscript(scenario, transcript); err != nil {
					return err
				}
			}

			res, err := app.Assistant.Analyze(cmd.Context(), transcript)
			if err != nil {
				return err
			}
			if res.Cached {
				fmt.Fprintf(cmd.ErrOrStderr(), "(cached analysis %s)\n", res.ID)
			}
			if opts.Mode == present.ModeTUI {
				opts.Mode = present.ModePretty
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderDocument(w, res.Analysis, res.Doc, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "pretty")
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "write or review the transcript in $EDITOR")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario label shown in the editor")
	return cmd
}

// readSource reads a file, or stdin for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func editTranscript(scenario, transcript string) (string, error) {
	path, err := editor.PathForID(fmt.Sprintf("encounter-%d", time.Now().UnixNano()))
	if err != nil {
		return "", err
	}
	initial := editor.ComposeTranscript(scenario, transcript)
	final, changed, err := editor.OpenAt(path, []byte(initial))
	if err != nil {
		return "", err
	}
	if !changed && transcript == "" {
		return "", errors.New("transcript unchanged; aborting")
	}
	label, body := editor.ParseTranscript(string(final))
	if label != "" && body != "" {
		body = editor.ScenarioPrefix + label + "\n\n" + body
	}
	return body, nil
}
