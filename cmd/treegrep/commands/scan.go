package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/treegrep/treegrep/internal/config"
	"github.com/treegrep/treegrep/pkg/rule"
	"github.com/treegrep/treegrep/pkg/scan"
)

// ScanCommand holds the flags for the scan command.
type ScanCommand struct {
	rulePaths  []string
	format     string
	configPath string
}

// NewScanCommand creates and configures the scan command.
func NewScanCommand() *cobra.Command {
	cmd := &ScanCommand{}

	cobraCmd := &cobra.Command{
		Use:   "scan --rule RULES [paths...]",
		Short: "Scan files against YAML rule documents",
		Long: "Scan files against YAML rule documents. Rules are grouped per\n" +
			"language and each file is matched in a single combined traversal.\n" +
			"Findings can be silenced with treegrep-ignore comments; ignores\n" +
			"that silence nothing are reported.",
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringSliceVarP(&cmd.rulePaths, "rule", "R", nil, "rule file or directory (repeatable)")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "", "output format: text or json")
	cobraCmd.Flags().StringVar(&cmd.configPath, "config", "", "config file path")

	return cobraCmd
}

// finding is one reported rule violation.
type finding struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Message  string `json:"message,omitempty"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Text     string `json:"text"`
}

// Run executes the scan command.
func (c *ScanCommand) Run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	format := c.format
	if format == "" {
		format = cfg.Output.Format
	}

	ruleFiles, err := collectRuleFiles(append(c.rulePaths, cfg.Rules.Dirs...), cfg.Rules.Globs)
	if err != nil {
		return err
	}

	if len(ruleFiles) == 0 {
		return fmt.Errorf("no rule files found")
	}

	sets, loadErrs := loadRuleSets(ruleFiles)

	slog.Debug("rules loaded", "files", len(ruleFiles), "languages", len(sets), "errors", len(loadErrs))

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := collectFiles(paths)
	if err != nil {
		return err
	}

	out := cobraCmd.OutOrStdout()
	setupColor(cfg.Output.Color)

	var findings []finding

	var unused []finding

	visit := func(file *parsedFile) error {
		set, ok := sets[file.grammar]
		if !ok {
			return nil
		}

		result := set.combined.Scan(file.root)

		for idx, matches := range result.Matches {
			compiled := set.combined.Rules()[idx]
			for _, m := range matches {
				findings = append(findings, finding{
					RuleID:   compiled.ID,
					Severity: compiled.Severity.String(),
					Message:  compiled.Message,
					Path:     file.path,
					Line:     m.Node().StartLine() + 1,
					Text:     firstLine(m.Text()),
				})
			}
		}

		for _, sup := range result.UnusedSuppressions {
			unused = append(unused, finding{
				Path: file.path,
				Line: sup.Line + 1,
				Text: strings.Join(sup.RuleIDs, ", "),
			})
		}

		return nil
	}

	err = forEachParsedFile(cobraCmd.Context(), files, cfg.Scan.Workers, cfg.Scan.MaxFileSize, "", visit)
	if err != nil {
		return err
	}

	sortFindings(findings)

	if format == "json" {
		return json.NewEncoder(out).Encode(findings)
	}

	printFindings(out, findings, unused, loadErrs)

	return nil
}

// loadedSet holds the compiled rules of one language.
type loadedSet struct {
	combined *scan.Combined
}

// collectRuleFiles expands rule paths into YAML files. Directories are
// searched recursively for names matching globs.
func collectRuleFiles(paths, globs []string) ([]string, error) {
	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		if !info.IsDir() {
			files = append(files, p)

			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() {
				return walkErr
			}

			for _, glob := range globs {
				if ok, _ := filepath.Match(glob, d.Name()); ok {
					files = append(files, path)

					break
				}
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Strings(files)

	return files, nil
}

// loadRuleSets parses and compiles every rule document, grouped per
// grammar. A broken rule never blocks the rest of the set; its error is
// reported alongside the findings.
func loadRuleSets(files []string) (map[string]*loadedSet, []error) {
	cache := newLangCache()
	compiled := map[string][]*rule.Compiled{}

	var errs []error

	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		for _, doc := range splitDocuments(string(raw)) {
			cfg, err := rule.ParseConfig([]byte(doc))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", file, err))

				continue
			}

			lang, err := cache.get(cfg.Language)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: rule %s: %w", file, cfg.ID, err))

				continue
			}

			comp, err := cfg.Compile(lang, rule.NewRegistry())
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: rule %s: %w", file, cfg.ID, err))

				continue
			}

			compiled[cfg.Language] = append(compiled[cfg.Language], comp)
		}
	}

	sets := make(map[string]*loadedSet, len(compiled))
	for grammar, rules := range compiled {
		sets[grammar] = &loadedSet{combined: scan.NewCombined(rules)}
	}

	return sets, errs
}

// splitDocuments cuts a YAML stream into its documents.
func splitDocuments(raw string) []string {
	var docs []string

	for _, doc := range strings.Split(raw, "\n---") {
		if strings.TrimSpace(doc) != "" {
			docs = append(docs, doc)
		}
	}

	return docs
}

func sortFindings(findings []finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}

		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}

		return findings[i].RuleID < findings[j].RuleID
	})
}

func printFindings(out io.Writer, findings, unused []finding, loadErrs []error) {
	for _, f := range findings {
		loc := color.New(color.FgCyan).Sprintf("%s:%d", f.Path, f.Line)
		sev := severityColor(f.Severity).Sprintf("%s[%s]", f.Severity, f.RuleID)
		fmt.Fprintf(out, "%s %s %s\n", sev, loc, f.Message)
		fmt.Fprintf(out, "  %s\n", f.Text)
	}

	for _, u := range unused {
		note := "suppression silences nothing"
		if u.Text != "" {
			note += " (" + u.Text + ")"
		}

		fmt.Fprintf(out, "%s %s:%d %s\n",
			color.New(color.FgYellow).Sprint("unused-ignore"), u.Path, u.Line, note)
	}

	for _, err := range loadErrs {
		fmt.Fprintf(out, "%s %v\n", color.New(color.FgRed).Sprint("rule-error"), err)
	}

	printSummary(out, findings)
}

// printSummary renders a per-rule count table.
func printSummary(out io.Writer, findings []finding) {
	counts := map[string]int{}
	severities := map[string]string{}

	for _, f := range findings {
		counts[f.RuleID]++
		severities[f.RuleID] = f.Severity
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.AppendHeader(table.Row{"RULE", "SEVERITY", "FINDINGS"})

	for _, id := range ids {
		tbl.AppendRow(table.Row{id, severities[id], counts[id]})
	}

	if len(ids) > 0 {
		tbl.Render()
	}

	fmt.Fprintf(out, "%s total\n", english.Plural(len(findings), "finding", ""))
}

func severityColor(severity string) *color.Color {
	switch severity {
	case "error":
		return color.New(color.FgRed)
	case "warning":
		return color.New(color.FgYellow)
	case "info", "hint":
		return color.New(color.FgBlue)
	default:
		return color.New(color.Faint)
	}
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")

	return line
}
