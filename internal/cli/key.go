package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/medic/internal/keys"
)

var errConfigKeys = errors.New("keys.provider is config; set llm.api_key in the config file instead")

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the LLM API key in the system keyring",
	}
	cmd.AddCommand(newKeySetCmd())
	cmd.AddCommand(newKeyDeleteCmd())
	cmd.AddCommand(newKeyStatusCmd())
	return cmd
}

func newKeySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the API key (read from the terminal or stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if app.Cfg.GetString("keys.provider") == "config" {
				return errConfigKeys
			}
			value, err := readSecret(cmd)
			if err != nil {
				return err
			}
			if value == "" {
				return errors.New("empty key")
			}
			if err := app.Keys.Put(keys.APIKeyName, value); err != nil {
				return fmt.Errorf("keyring: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key stored")
			return nil
		},
	}
}

func newKeyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if app.Cfg.GetString("keys.provider") == "config" {
				return errConfigKeys
			}
			if err := app.Keys.Delete(keys.APIKeyName); err != nil {
				return fmt.Errorf("keyring: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
			return nil
		},
	}
}

func newKeyStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			_, err := app.Keys.Get(keys.APIKeyName)
			switch {
			case err == nil:
				fmt.Fprintln(cmd.OutOrStdout(), "API key: set")
			case errors.Is(err, keys.ErrKeyNotFound):
				fmt.Fprintln(cmd.OutOrStdout(), "API key: not set")
			default:
				return fmt.Errorf("keyring: %w", err)
			}
			if app.Cfg.GetString("keys.provider") != "config" && !keys.KeyringAvailable() {
				fmt.Fprintln(cmd.OutOrStdout(), "keyring: unavailable")
			}
			return nil
		},
	}
}

// readSecret prompts without echo on a terminal, else reads one line.
func readSecret(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
