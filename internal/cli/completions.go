package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/medic/internal/config"
	"github.com/mithrel/medic/internal/db"
	"github.com/mithrel/medic/pkg/api"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "completion",
		Short:       "Generate shell completion scripts",
		Annotations: map[string]string{"app": "none"},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate Bash completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate Zsh completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate Fish completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})

	return cmd
}

// completeExchangeIDs offers recent history ids. Completion runs without
// the pre-run hook, so the store is opened here.
func completeExchangeIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	v := viper.New()
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		v.SetConfigFile(p)
	}
	if err := config.Load(cmd.Context(), v); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	store, err := db.Open(cmd.Context(), v.GetString("db_url"))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer store.Close()
	items, _, err := store.List(cmd.Context(), api.ListQuery{Limit: 100})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	out := make([]string, 0, len(items))
	for _, e := range items {
		if strings.HasPrefix(e.ID, toComplete) {
			out = append(out, e.ID+"\t"+e.Title)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
