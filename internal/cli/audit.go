package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/upkeep/pkg/advisory"
	"github.com/matzehuels/upkeep/pkg/cargo"
	errs "github.com/matzehuels/upkeep/pkg/errors"
)

func (c *CLI) auditCommand() *cobra.Command {
	var (
		jsonOut bool
		failOn  string
	)

	cmd := &cobra.Command{
		Use:   "audit <report> [graph]",
		Short: "Attribute advisory findings to dependency paths",
		Long: `Read an advisory report and show, for every finding, the shortest path
from a root package to the vulnerable crate.

The report is cargo-audit JSON or a plain JSON array of findings with
id, package, version and an optional severity or CVSS v3 vector. Use "-" to
read it from stdin.`,
		Example: `  cargo audit --json | upkeep audit -
  upkeep audit audit.json metadata.json --fail-on high`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var min advisory.Severity
			if failOn != "" {
				var err error
				if min, err = advisory.ParseSeverity(failOn); err != nil {
					return errs.Wrap(errs.ErrCodeInvalidInput, err, "--fail-on")
				}
			}

			graph := graphPath(args[1:])
			if args[0] == cargo.StdinPath && graph == cargo.StdinPath {
				return errs.New(errs.ErrCodeInvalidInput, "report and graph cannot both be read from stdin")
			}

			runner := c.newRunner()
			snap, err := c.load(cmd.Context(), runner, graph)
			if err != nil {
				return err
			}

			in, closeReport, err := c.openReport(args[0])
			if err != nil {
				return err
			}
			defer closeReport()

			report, err := runner.Audit(cmd.Context(), snap, in)
			if err != nil {
				return err
			}

			if jsonOut {
				err = writeJSON(cmd.OutOrStdout(), report)
			} else {
				printReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				return err
			}
			return checkThreshold(report, min)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "exit non-zero if any finding is at least this severe")

	return cmd
}

func (c *CLI) openReport(path string) (io.Reader, func(), error) {
	if path == cargo.StdinPath {
		return c.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "advisory report %s", path)
		}
		return nil, nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "open %s", path)
	}
	return f, func() { f.Close() }, nil
}

// checkThreshold fails when any vulnerability reaches min. An empty min never fails.
func checkThreshold(report advisory.Report, min advisory.Severity) error {
	if min == "" {
		return nil
	}
	n := 0
	for _, v := range report.Vulnerabilities {
		if v.Severity.AtLeast(min) {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("%d finding(s) at or above %s", n, min)
	}
	return nil
}

func printReport(w io.Writer, report advisory.Report) {
	if len(report.Vulnerabilities) == 0 {
		printSuccess(w, "No known vulnerabilities")
		return
	}

	rows := make([][]string, len(report.Vulnerabilities))
	for i, v := range report.Vulnerabilities {
		fix := "no"
		if v.FixAvailable {
			fix = "yes"
		}
		rows[i] = []string{
			renderSeverity(v.Severity),
			v.AdvisoryID,
			v.Package + " " + v.PackageVersion,
			strings.Join(v.Path, " "+iconArrow+" "),
			fix,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Severity", "Advisory", "Crate", "Path", "Fix").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintln(w, t.Render())

	s := report.Summary
	printInfo(w, "%s vulnerabilities: %s critical, %s high, %s moderate, %s low",
		StyleNumber.Render(fmt.Sprint(s.Total)),
		StyleNumber.Render(fmt.Sprint(s.Critical)),
		StyleNumber.Render(fmt.Sprint(s.High)),
		StyleNumber.Render(fmt.Sprint(s.Moderate)),
		StyleNumber.Render(fmt.Sprint(s.Low)))
}
