package language

import (
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

// extGrammars maps file extensions to grammar names understood by New.
var extGrammars = map[string]string{
	".c":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".cs":    "c_sharp",
	".css":   "css",
	".ex":    "elixir",
	".exs":   "elixir",
	".go":    "go",
	".h":     "c",
	".hpp":   "cpp",
	".html":  "html",
	".java":  "java",
	".js":    "javascript",
	".json":  "json",
	".jsx":   "javascript",
	".kt":    "kotlin",
	".lua":   "lua",
	".mjs":   "javascript",
	".php":   "php",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".scala": "scala",
	".sh":    "bash",
	".swift": "swift",
	".ts":    "typescript",
	".tsx":   "tsx",
	".yaml":  "yaml",
	".yml":   "yaml",
}

// enryGrammars maps enry language names to grammar names where the two
// spellings differ.
var enryGrammars = map[string]string{
	"c#":    "c_sharp",
	"c++":   "cpp",
	"shell": "bash",
}

// knownGrammars guards the content-detection fallback: enry names many
// languages no grammar is bundled for.
var knownGrammars = func() map[string]bool {
	known := make(map[string]bool, len(extGrammars))
	for _, grammar := range extGrammars {
		known[grammar] = true
	}

	return known
}()

// Detect guesses the grammar for a file from its extension, falling back
// to content-based detection. Returns false when no grammar is known for
// the file.
func Detect(path string, contents []byte) (string, bool) {
	if grammar, ok := extGrammars[strings.ToLower(filepath.Ext(path))]; ok {
		return grammar, true
	}

	name := enry.GetLanguage(filepath.Base(path), contents)
	if name == "" {
		return "", false
	}

	lower := strings.ToLower(name)
	if grammar, ok := enryGrammars[lower]; ok {
		return grammar, true
	}

	if knownGrammars[lower] {
		return lower, true
	}

	return "", false
}
