package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/treegrep/treegrep/internal/config"
	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/replace"
	"github.com/treegrep/treegrep/pkg/textutil"
)

// RunCommand holds the flags for the run command.
type RunCommand struct {
	pattern    string
	rewrite    string
	lang       string
	strictness string
	configPath string
	jsonOut    bool
	inPlace    bool
}

// NewRunCommand creates and configures the run command.
func NewRunCommand() *cobra.Command {
	cmd := &RunCommand{}

	cobraCmd := &cobra.Command{
		Use:   "run -p PATTERN [paths...]",
		Short: "Search files with a structural pattern",
		Long: "Search files with a structural pattern. Meta-variables ($X) match\n" +
			"single nodes, $$$ matches any run of siblings. With --rewrite the\n" +
			"matches are replaced by the template and a diff is printed.",
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.pattern, "pattern", "p", "", "pattern to search for (required)")
	cobraCmd.Flags().StringVarP(&cmd.rewrite, "rewrite", "r", "", "replacement template")
	cobraCmd.Flags().StringVarP(&cmd.lang, "lang", "l", "", "grammar name; detected per file when empty")
	cobraCmd.Flags().StringVar(&cmd.strictness, "strictness", "", "matching strictness: exact, smart, syntax, relaxed, signature")
	cobraCmd.Flags().StringVar(&cmd.configPath, "config", "", "config file path")
	cobraCmd.Flags().BoolVar(&cmd.jsonOut, "json", false, "emit matches as JSON")
	cobraCmd.Flags().BoolVar(&cmd.inPlace, "in-place", false, "write rewrites back to the files")

	_ = cobraCmd.MarkFlagRequired("pattern")

	return cobraCmd
}

// runMatch is the JSON shape of one reported match.
type runMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Run executes the run command.
func (c *RunCommand) Run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := collectFiles(paths)
	if err != nil {
		return err
	}

	start := time.Now()

	slog.Debug("run starting", "files", len(files), "pattern", c.pattern)

	patterns := newPatternSet(c.pattern, c.strictness)
	template := replace.NewTemplate(c.rewrite, nil)
	out := cobraCmd.OutOrStdout()
	setupColor(cfg.Output.Color)

	total := 0
	fileCount := 0

	var jsonMatches []runMatch

	visit := func(file *parsedFile) error {
		pat, patErr := patterns.get(file)
		if patErr != nil {
			// Without an explicit language the pattern is only meaningful
			// for grammars it parses under; skip the rest.
			if c.lang == "" {
				return nil
			}

			return fmt.Errorf("%s: %w", file.path, patErr)
		}

		matches := match.FindAllNodes(pat, file.root.Node())
		if len(matches) == 0 {
			return nil
		}

		total += len(matches)
		fileCount++

		slog.Debug("file matched",
			"path", file.path, "matches", len(matches), "lines", textutil.CountLines(file.source))

		if c.rewrite != "" {
			return c.applyRewrite(out, file, pat, template, matches)
		}

		for _, m := range matches {
			if c.jsonOut {
				jsonMatches = append(jsonMatches, runMatch{Path: file.path, Line: m.Node().StartLine() + 1, Text: m.Text()})

				continue
			}

			printMatch(out, file.path, m)
		}

		return nil
	}

	err = forEachParsedFile(cobraCmd.Context(), files, cfg.Scan.Workers, cfg.Scan.MaxFileSize, c.lang, visit)
	if err != nil {
		return err
	}

	slog.Debug("run finished", "matches", total, "elapsed", time.Since(start))

	if c.jsonOut {
		return json.NewEncoder(out).Encode(jsonMatches)
	}

	fmt.Fprintf(out, "%s in %s\n",
		english.Plural(total, "match", ""),
		english.Plural(fileCount, "file", ""))

	return nil
}

func (c *RunCommand) applyRewrite(
	out io.Writer,
	file *parsedFile,
	pat match.Matcher,
	template *replace.Template,
	matches []*match.NodeMatch,
) error {
	edits := make([]replace.Edit, 0, len(matches))
	for _, m := range matches {
		edits = append(edits, replace.MakeEdit(m, pat, template))
	}

	rewritten := replace.ApplyEdits(file.source, edits)

	if c.inPlace {
		return os.WriteFile(file.path, rewritten, 0o644)
	}

	printDiff(out, file.path, string(file.source), string(rewritten))

	return nil
}

func printMatch(out io.Writer, path string, m *match.NodeMatch) {
	loc := color.New(color.FgCyan).Sprintf("%s:%d", path, m.Node().StartLine()+1)
	text, _, _ := strings.Cut(m.Text(), "\n")
	fmt.Fprintf(out, "%s: %s\n", loc, text)
}

func printDiff(out io.Writer, path, before, after string) {
	if before == after {
		return
	}

	fmt.Fprintln(out, color.New(color.Bold).Sprint(path))

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines)

	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	for _, d := range diffs {
		for _, line := range splitDiffLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				red.Fprintf(out, "-%s\n", line)
			case diffmatchpatch.DiffInsert:
				green.Fprintf(out, "+%s\n", line)
			case diffmatchpatch.DiffEqual:
			}
		}
	}
}

func splitDiffLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func setupColor(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
}
