package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/services"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// fileLocation is the path of the looked-up file inside a repository node.
const fileLocation = services.FieldFile + ".path"

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown format %q (want one of %s)",
		domain.ErrInvalidInput, format, strings.Join(allowed, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func writeFormatted(w io.Writer, format string, v any) error {
	if format == formatYAML {
		return writeYAML(w, v)
	}
	return writeJSON(w, v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// scanReport is the json/yaml rendering of a finished scan.
type scanReport struct {
	Org     string        `json:"org" yaml:"org"`
	Scanned int           `json:"scanned" yaml:"scanned"`
	Matched int           `json:"matched" yaml:"matched"`
	Total   int           `json:"total" yaml:"total"`
	Matches []domain.Node `json:"matches" yaml:"matches"`
}

// writeMatchTable renders accepted repositories one per row.
func writeMatchTable(w io.Writer, nodes []domain.Node) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tARCHIVED\tFILE")
	for _, n := range nodes {
		name := n.String("nameWithOwner")
		if name == "" {
			name = n.String(services.FieldName)
		}
		archived := "-"
		if b, ok := n.Bool(services.FieldArchived); ok {
			archived = strconv.FormatBool(b)
		}
		file := n.String(fileLocation)
		if file == "" {
			file = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, archived, file)
	}
	return tw.Flush()
}

// summaryLine is printed after a scan in table mode.
func summaryLine(stats domain.ScanStats) string {
	total := "?"
	if stats.Total != nil {
		total = strconv.Itoa(*stats.Total)
	}
	return fmt.Sprintf("Scanned %d of %s, matched %d", stats.Scanned, total, stats.Matched)
}

// writeRunTable renders recorded scan runs.
func writeRunTable(w io.Writer, runs []domain.ScanRun) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTARTED\tORG\tSCANNED\tMATCHED\tTOTAL\tSTATUS")
	for _, r := range runs {
		status := "ok"
		switch {
		case r.Error != "":
			status = "failed"
		case r.FinishedAt.IsZero():
			status = "incomplete"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(r.ID), r.StartedAt.UTC().Format("2006-01-02 15:04:05"), orDash(r.Org),
			r.Scanned, r.Matched, r.Total, status)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// progress prints a running counter to w when w is an interactive terminal.
type progress struct {
	w       io.Writer
	enabled bool
}

func newProgress(w io.Writer) *progress {
	f, ok := w.(*os.File)
	return &progress{w: w, enabled: ok && term.IsTerminal(int(f.Fd()))}
}

func (p *progress) update(matched int, name string) {
	if p.enabled {
		fmt.Fprintf(p.w, "\r\033[Kmatched %d: %s", matched, name)
	}
}

func (p *progress) done() {
	if p.enabled {
		fmt.Fprint(p.w, "\r\033[K")
	}
}
