package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/src-d/enry/v2"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/textutil"
	"github.com/treegrep/treegrep/pkg/tree"
)

// parsedFile is one source file with its parsed view, ready for matching.
type parsedFile struct {
	path    string
	grammar string
	source  []byte
	root    *tree.Root
}

// collectFiles expands the argument paths into a sorted list of candidate
// files. Directories are walked recursively; hidden and vendored entries
// are skipped.
func collectFiles(paths []string) ([]string, error) {
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
			if walkErr != nil {
				return walkErr
			}

			name := d.Name()
			if d.IsDir() {
				if path != p && (strings.HasPrefix(name, ".") || enry.IsVendor(path+"/")) {
					return filepath.SkipDir
				}

				return nil
			}

			if strings.HasPrefix(name, ".") || enry.IsVendor(path) {
				return nil
			}

			files = append(files, path)

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Strings(files)

	return files, nil
}

// langCache shares Language handles between workers; grammar construction
// scans the full kind table once and is worth amortizing.
type langCache struct {
	mu    sync.Mutex
	langs map[string]*language.Language
}

func newLangCache() *langCache {
	return &langCache{langs: map[string]*language.Language{}}
}

func (c *langCache) get(grammar string) (*language.Language, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lang, ok := c.langs[grammar]; ok {
		return lang, nil
	}

	lang, err := language.New(grammar)
	if err != nil {
		return nil, err
	}

	c.langs[grammar] = lang

	return lang, nil
}

// forEachParsedFile reads, detects, and parses files across a bounded
// worker pool, then hands results to visit in path order. Files that are
// too large, binary, or in an unknown language are skipped silently;
// other errors abort the run.
func forEachParsedFile(
	ctx context.Context,
	files []string,
	workers int,
	maxFileSize int64,
	grammarOverride string,
	visit func(*parsedFile) error,
) error {
	if workers <= 0 {
		workers = defaultWorkers()
	}

	cache := newLangCache()
	parsed := make([]*parsedFile, len(files))
	errs := make([]error, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range jobs {
				parsed[idx], errs[idx] = parseOne(ctx, cache, files[idx], maxFileSize, grammarOverride)
			}
		}()
	}

	for idx := range files {
		jobs <- idx
	}

	close(jobs)
	wg.Wait()

	for idx, file := range parsed {
		if errs[idx] != nil {
			return fmt.Errorf("%s: %w", files[idx], errs[idx])
		}

		if file == nil {
			continue
		}

		if err := visit(file); err != nil {
			return err
		}
	}

	return nil
}

func parseOne(
	ctx context.Context,
	cache *langCache,
	path string,
	maxFileSize int64,
	grammarOverride string,
) (*parsedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if maxFileSize > 0 && info.Size() > maxFileSize {
		return nil, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if textutil.IsBinary(source) {
		return nil, nil
	}

	grammar := grammarOverride
	if grammar == "" {
		detected, ok := language.Detect(path, source)
		if !ok {
			return nil, nil
		}

		grammar = detected
	}

	lang, err := cache.get(grammar)
	if err != nil {
		// Detection named a language no grammar is bundled for.
		if grammarOverride == "" {
			return nil, nil
		}

		return nil, err
	}

	root, err := tree.Parse(ctx, lang, source)
	if err != nil {
		return nil, err
	}

	return &parsedFile{path: path, grammar: grammar, source: source, root: root}, nil
}

func defaultWorkers() int {
	return runtime.NumCPU()
}
