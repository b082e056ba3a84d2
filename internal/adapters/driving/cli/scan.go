package cli

import (
	"context"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/services"
)

var (
	scanOrg           string
	scanFile          string
	scanArchived      bool
	scanAll           bool
	scanLimit         int
	scanQuery         string
	scanPath          string
	scanTotalQuery    string
	scanTotalPath     string
	scanVars          []string
	scanFilterContent string
	scanFilterName    string
	scanRequireFile   bool
	scanStrict        bool
	scanFormat        string
	scanDB            string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an organisation's repositories",
	Long: `Pages through the organisation's repositories and prints every one that
passes the filters, followed by "Scanned X of TOTAL, matched Y".

By default only active (non-archived) repositories are reported. Use
--archived to report archived ones instead, or --all for both.

The built-in query fetches the default branch tip and the blob at --file
(Jenkinsfile unless configured otherwise), so --require-file and
--filter-content can select repositories by what that file contains.`,
	Example: `  ghscan scan --org my-org --require-file
  ghscan scan --org my-org --file .travis.yml --filter-content 'language: ruby'
  ghscan scan --org my-org --all --limit 20 --format json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	f := scanCmd.Flags()
	f.StringVar(&scanOrg, "org", "", "organisation login (default from config)")
	f.StringVar(&scanFile, "file", "", "file to look up on each default branch (default from config)")
	f.BoolVar(&scanArchived, "archived", false, "report archived repositories instead of active ones")
	f.BoolVar(&scanAll, "all", false, "report repositories regardless of archive state")
	f.IntVarP(&scanLimit, "limit", "n", 0, "stop after this many matches (0 = no limit)")
	f.StringVar(&scanQuery, "query", "", "query name, .graphql file or literal text (default built-in)")
	f.StringVar(&scanPath, "path", "", "dotted path of the connection in a custom query")
	f.StringVar(&scanTotalQuery, "total-query", "", "query that reports the total (default: the paginated query)")
	f.StringVar(&scanTotalPath, "total-path", "", "dotted path of the total count (default: PATH.totalCount)")
	f.StringArrayVar(&scanVars, "var", nil, "query variable as key=value (repeatable)")
	f.StringVar(&scanFilterContent, "filter-content", "", "only report repositories whose file matches this regexp")
	f.StringVar(&scanFilterName, "filter-name", "", "only report repositories whose name matches this regexp")
	f.BoolVar(&scanRequireFile, "require-file", false, "only report repositories that have the file")
	f.BoolVar(&scanStrict, "strict", false, "fail on responses missing the connection or pageInfo")
	f.StringVar(&scanFormat, "format", formatTable, "output format: table, json or yaml")
	f.StringVar(&scanDB, "db", "", "record the run in the history database in this directory")
	scanCmd.MarkFlagsMutuallyExclusive("archived", "all")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(scanFormat, formatTable, formatJSON, formatYAML); err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if scanDB != "" {
		settings.Database = scanDB
	}

	opts, err := buildScanOptions(settings)
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

	var matches []domain.Node
	prog := newProgress(cmd.ErrOrStderr())
	result, err := scanner.Scan(ctx, opts, func(n domain.Node) error {
		matches = append(matches, n)
		prog.update(len(matches), n.String(services.FieldName))
		return nil
	})
	prog.done()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if settings.Database != "" {
		cmd.PrintErrf("Recorded run %s\n", result.RunID)
	}
	return outputScan(cmd, opts.Org, result.Stats, matches)
}

// buildScanOptions combines flags and settings into scan options.
func buildScanOptions(settings domain.AppSettings) (services.ScanOptions, error) {
	org := scanOrg
	if org == "" {
		org = settings.Org
	}
	if org == "" {
		return services.ScanOptions{}, fmt.Errorf(
			"%w: no organisation given; use --org or \"ghscan config set org NAME\"", domain.ErrConfiguration)
	}

	if scanLimit < 0 {
		return services.ScanOptions{}, fmt.Errorf("%w: --limit must not be negative, got %d", domain.ErrInvalidInput, scanLimit)
	}

	vars, err := parseVars(scanVars)
	if err != nil {
		return services.ScanOptions{}, err
	}

	query := scanQuery
	if query == "" {
		query = services.DefaultQuery
	}
	if query == services.DefaultQuery {
		file := scanFile
		if file == "" {
			file = settings.FilePath
		}
		vars = domain.MergeVariables(domain.Variables{
			"repoFirst": int64(settings.PageSize),
			"filePath":  file,
		}, vars)
	} else if scanFile != "" {
		return services.ScanOptions{}, fmt.Errorf("%w: --file only applies to the built-in query", domain.ErrInvalidInput)
	}

	var filters []services.Predicate
	if scanRequireFile {
		filters = append(filters, services.FileExistsFilter(services.FieldFile))
	}
	if scanFilterName != "" {
		re, err := regexp.Compile(scanFilterName)
		if err != nil {
			return services.ScanOptions{}, fmt.Errorf("%w: --filter-name: %w", domain.ErrInvalidInput, err)
		}
		filters = append(filters, services.NameMatchFilter(re))
	}
	if scanFilterContent != "" {
		re, err := regexp.Compile(scanFilterContent)
		if err != nil {
			return services.ScanOptions{}, fmt.Errorf("%w: --filter-content: %w", domain.ErrInvalidInput, err)
		}
		filters = append(filters, services.ContentMatchFilter(re, services.FieldFileContent))
	}

	return services.ScanOptions{
		Org:        org,
		Query:      query,
		Path:       scanPath,
		TotalQuery: scanTotalQuery,
		TotalPath:  scanTotalPath,
		Archived:   scanArchived,
		All:        scanAll,
		Limit:      scanLimit,
		Strict:     scanStrict,
		Variables:  vars,
		Filters:    filters,
	}, nil
}

func outputScan(cmd *cobra.Command, org string, stats domain.ScanStats, matches []domain.Node) error {
	out := cmd.OutOrStdout()
	if scanFormat == formatTable {
		if len(matches) > 0 {
			if err := writeMatchTable(out, matches); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, summaryLine(stats))
		return nil
	}

	report := scanReport{
		Org:     org,
		Scanned: stats.Scanned,
		Matched: stats.Matched,
		Matches: matches,
	}
	if stats.Total != nil {
		report.Total = *stats.Total
	}
	if report.Matches == nil {
		report.Matches = []domain.Node{}
	}
	return writeFormatted(out, scanFormat, report)
}
