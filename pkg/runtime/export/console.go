package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"golang.org/x/term"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	CountWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  32,
		CountWidth: 12,
	}
}

// Console prints the report summary as text tables
type Console struct {
	writer io.Writer
	config TableConfig
	// Color enables ANSI colored tiers; NewConsole turns it on for terminals.
	Color bool
}

func NewConsole(writer io.Writer) *Console {
	if writer == nil {
		writer = os.Stdout
	}
	c := &Console{writer: writer, config: DefaultTableConfig()}
	if f, ok := writer.(*os.File); ok {
		c.Color = term.IsTerminal(int(f.Fd()))
	}
	return c
}

var ansiColors = map[domain.Color]string{
	domain.ColorRed:    "\033[31m",
	domain.ColorOrange: "\033[38;5;208m",
	domain.ColorYellow: "\033[33m",
	domain.ColorGreen:  "\033[32m",
	domain.ColorPurple: "\033[35m",
}

const ansiReset = "\033[0m"

func (c *Console) paint(text string, color domain.Color) string {
	if !c.Color || color == domain.ColorWhite || color == "" {
		return text
	}
	code, ok := ansiColors[color]
	if !ok {
		r, g, b := color.RGB()
		code = fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
	}
	return code + text + ansiReset
}

func (c *Console) Handle(_ context.Context, report *domain.ComplianceReport) error {
	funcMap := template.FuncMap{
		"row": func(name string, counts ...int) string {
			var b strings.Builder
			fmt.Fprintf(&b, "| %-*s |", c.config.NameWidth, truncate(name, c.config.NameWidth))
			for _, n := range counts {
				fmt.Fprintf(&b, " %*d |", c.config.CountWidth, n)
			}
			return b.String()
		},
		"head": func(name string, columns ...string) string {
			var b strings.Builder
			fmt.Fprintf(&b, "| %-*s |", c.config.NameWidth, name)
			for _, col := range columns {
				fmt.Fprintf(&b, " %*s |", c.config.CountWidth, truncate(col, c.config.CountWidth))
			}
			return b.String()
		},
		"separator": func(columns int) string {
			return fmt.Sprintf("+%s+%s", strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat(strings.Repeat("-", c.config.CountWidth+2)+"+", columns))
		},
		"tier": func(t domain.TierCount) string {
			label := fmt.Sprintf("%-*s", c.config.NameWidth, truncate(string(t.Tier), c.config.NameWidth))
			return fmt.Sprintf("| %s | %*d |", c.paint(label, t.Color), c.config.CountWidth, t.Count)
		},
	}

	tmpl := `
{{.Title}}
Source: {{.Source}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
Findings: {{.Stats.Total}} (matched {{.Stats.Matched}}, no rule {{.Stats.Unmatched}})

=== Category Analysis ===
{{separator 3}}
{{head "Category" "Open Issues" "Safe" "Total"}}
{{separator 3}}
{{range .CategorySummaries}}{{row .Category .OpenIssues .SafeCount .Total}}
{{end}}{{separator 3}}

=== Priority Summary ===
{{separator 1}}
{{head "Priority" "Count"}}
{{separator 1}}
{{range .Priorities}}{{tier .}}
{{end}}{{separator 1}}
{{row "Total" .PriorityTotal}}
{{separator 1}}
{{if .Severities}}
=== Open Issues by Severity ===
{{range .Severities}}{{.Severity}}: {{.Count}}
{{end}}{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
