package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryVars   []string
	queryFormat string
)

var queryCmd = &cobra.Command{
	Use:   "query NAME|TEXT",
	Short: "Execute a single GraphQL query",
	Long: `Executes one query and prints the result document. NAME is a built-in
query ("repositories", "total"), a file in the configured query directory or a
path to a .graphql file. Anything containing "{" is sent as literal text.

GraphQL errors in the response are reported on stderr and the partial data is
still printed.`,
	Example: `  ghscan query total --var org=my-org
  ghscan query '{ viewer { login } }' --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVar(&queryVars, "var", nil, "query variable as key=value (repeatable)")
	queryCmd.Flags().StringVar(&queryFormat, "format", formatJSON, "output format: json or yaml")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := checkFormat(queryFormat, formatJSON, formatYAML); err != nil {
		return err
	}

	vars, err := parseVars(queryVars)
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scanner, closeScanner, err := openScanner(ctx, settings, false)
	if err != nil {
		return err
	}
	defer func() { _ = closeScanner() }()

	doc, err := scanner.Query(ctx, args[0], vars)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	return writeFormatted(cmd.OutOrStdout(), queryFormat, doc)
}
