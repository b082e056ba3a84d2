package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driving"
)

var (
	historyDB     string
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scan runs",
	Long: `Lists scans recorded with --db (or the "database" setting), newest first.
Use "ghscan history show ID" to print the repositories a run matched.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show the matches of a recorded run",
	Long:  `Shows the repositories matched by a run. ID may be a unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "", "history database directory (default from config)")
	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", formatTable, "output format: table, json or yaml")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list (0 = all)")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens an offline scan service over the history database.
func openHistory(cmd *cobra.Command) (driving.ScanService, func() error, error) {
	if err := checkFormat(historyFormat, formatTable, formatJSON, formatYAML); err != nil {
		return nil, nil, err
	}

	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	if historyDB != "" {
		settings.Database = historyDB
	}
	if settings.Database == "" {
		return nil, nil, fmt.Errorf(
			"%w: no history database; use --db or \"ghscan config set database DIR\"", domain.ErrConfiguration)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return openScanner(ctx, settings, true)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	scanner, closeScanner, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeScanner() }()

	runs, err := scanner.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if historyFormat != formatTable {
		if runs == nil {
			runs = []domain.ScanRun{}
		}
		return writeFormatted(out, historyFormat, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}
	return writeRunTable(out, runs)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	scanner, closeScanner, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeScanner() }()

	run, err := findRun(cmd.Context(), scanner, args[0])
	if err != nil {
		return err
	}

	matches, err := scanner.Matches(cmd.Context(), run.ID)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	nodes := make([]domain.Node, len(matches))
	for i, m := range matches {
		nodes[i] = m.Node
	}

	out := cmd.OutOrStdout()
	if historyFormat != formatTable {
		return writeFormatted(out, historyFormat, scanReport{
			Org:     run.Org,
			Scanned: run.Scanned,
			Matched: run.Matched,
			Total:   run.Total,
			Matches: nodes,
		})
	}

	fmt.Fprintf(out, "Run %s (%s) started %s\n", run.ID, orDash(run.Org), run.StartedAt.UTC().Format("2006-01-02 15:04:05"))
	if run.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", run.Error)
	}
	fmt.Fprintln(out)
	if len(nodes) > 0 {
		if err := writeMatchTable(out, nodes); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	total := run.Total
	fmt.Fprintln(out, summaryLine(domain.ScanStats{Scanned: run.Scanned, Matched: run.Matched, Total: &total}))
	return nil
}

// findRun resolves a full ID or unique prefix among all recorded runs.
func findRun(ctx context.Context, scanner driving.ScanService, prefix string) (*domain.ScanRun, error) {
	runs, err := scanner.History(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var found []domain.ScanRun
	for _, r := range runs {
		if r.ID == prefix {
			return &r, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			found = append(found, r)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("run %q: %w", prefix, domain.ErrNotFound)
	case 1:
		return &found[0], nil
	default:
		return nil, errors.New("run prefix " + prefix + " is ambiguous")
	}
}
