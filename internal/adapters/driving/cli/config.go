package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghscan/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long: `Shows and changes the settings stored in ~/.ghscan/config.toml.

Keys:
  endpoint      GraphQL endpoint URL
  org           default organisation login
  token_env     environment variable holding the token (GITHUB_PAT)
  schema_url    schema SDL download URL; empty disables validation
  schema_cache  schema snapshot path ($TMPDIR/github.schema.graphql)
  query_dir     directory searched for NAME.graphql
  page_size     repositories per request (1-100)
  file_path     file looked up on each default branch (Jenkinsfile)
  database      scan history directory; empty disables recording`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	tw := newTable(cmd.OutOrStdout())
	for _, key := range services.Keys() {
		value, err := settingsService.Value(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", key, orDash(value))
	}
	return tw.Flush()
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	value, err := settingsService.Value(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("set %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s updated\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), settingsService.Path())
	return nil
}
