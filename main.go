// declmap extracts type declarations from C# sources and projects them into
// a documentation template.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/declmap/internal/config"
	"github.com/phobologic/declmap/internal/discover"
	"github.com/phobologic/declmap/internal/lang"
	"github.com/phobologic/declmap/internal/model"
	"github.com/phobologic/declmap/internal/parse"
	"github.com/phobologic/declmap/internal/project"
	"github.com/phobologic/declmap/internal/scan"
	"github.com/phobologic/declmap/internal/toon"
)

var version = "dev"

const usageText = `Usage: declmap [flags] <source-dir> <template-file> <output-dir> <output-file>
       declmap init [flags] [template-file]

Scan source-dir for class, struct, enum and interface declarations and write
template-file, expanded with them, to output-dir/output-file.

Flags:
`

func main() {
	args := os.Args[1:]
	var err error
	if len(args) > 0 && args[0] == "init" {
		err = runInit(args[1:], os.Stdout, os.Stderr)
	} else {
		err = run(args, os.Stdout, os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("declmap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  string
		exclude     string
		maxFileSize int
		list        bool
		verify      bool
		showVersion bool
	)

	fs.StringVar(&configPath, "config", "", "YAML or JSON config file")
	fs.StringVar(&exclude, "exclude", "", "comma-separated glob patterns to skip")
	fs.IntVar(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (default from config, 1000000)")
	fs.BoolVar(&list, "list", false, "print extracted constructs to stdout")
	fs.BoolVar(&verify, "verify", false, "cross-check extracted constructs with the tree-sitter parser")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "declmap %s\n", version)
		return nil
	}

	if fs.NArg() != 4 {
		fs.Usage()
		return fmt.Errorf("expected 4 arguments, got %d", fs.NArg())
	}
	root, templatePath, outDir, outFile := fs.Arg(0), fs.Arg(1), fs.Arg(2), fs.Arg(3)

	cfg := config.New()
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	if exclude != "" {
		cfg.Discovery.Exclude = append(cfg.Discovery.Exclude, parseCommaSeparated(exclude)...)
	}
	if maxFileSize > 0 {
		cfg.Discovery.MaxFileSize = maxFileSize
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	// Load the template before scanning so a bad path fails fast.
	template, err := loadTemplate(templatePath)
	if err != nil {
		return err
	}

	// Discover files
	files, err := discover.Files(root, discover.Options{
		Extensions: cfg.Discovery.Extensions,
		Exclude:    cfg.Discovery.Exclude,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintf(stderr, "Warning: no source files found under %s\n", root)
	}

	// Filter by size
	files = filterBySize(root, files, cfg.Discovery.MaxFileSize, stderr)

	// Scan files concurrently, then dedupe in discovery order
	results := scanFilesConcurrent(root, files, verify, stderr)

	reg := &model.Registry{}
	dedup := scan.NewDeduplicator()
	for _, r := range results {
		scan.Merge(dedup, reg, r.constructs)
		for _, m := range r.mismatches {
			_, _ = fmt.Fprintf(stderr, "Warning: %s\n", m)
		}
	}

	if list {
		_, _ = fmt.Fprintln(stdout, toon.Encode(filepath.Base(root), reg))
	}

	output := project.New(cfg.Template).Project(template, reg)

	outPath, err := writeOutput(outDir, outFile, output)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stderr, "wrote %d constructs to %s\n", reg.Len(), outPath)
	return nil
}

func loadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("loading template: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("loading template: %s: not valid UTF-8", path)
	}
	return string(data), nil
}

func writeOutput(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return path, nil
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, stderr io.Writer) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // reported when the read fails
			continue
		}
		if fi.Size() > int64(maxSize) {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: skipped (>%d bytes)\n", f.Path, maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

type scanResult struct {
	constructs []model.Construct
	mismatches []parse.Mismatch
}

// scanFilesConcurrent scans every file and returns one result per file in
// the order of files. Unreadable files yield an empty result and a warning.
// Partial classes are not collapsed here; the caller merges in order.
func scanFilesConcurrent(root string, files []discover.FileEntry, verify bool, stderr io.Writer) []scanResult {
	type result struct {
		index int
		scanResult
	}

	if len(files) == 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup
	var stderrMu sync.Mutex
	warn := func(format string, args ...any) {
		stderrMu.Lock()
		_, _ = fmt.Fprintf(stderr, "Warning: "+format+"\n", args...)
		stderrMu.Unlock()
	}

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parsers
			parsers := make(map[string]*parserPair)

			for idx := range work {
				f := files[idx]

				source, err := os.ReadFile(filepath.Join(root, f.Path))
				if err != nil {
					warn("%s: %v", f.Path, err)
					continue
				}
				if !utf8.Valid(source) {
					warn("%s: not valid UTF-8, skipped", f.Path)
					continue
				}

				r := result{index: idx}
				r.constructs = scan.File(source, f.Path)

				if verify {
					pp, err := parserFor(parsers, filepath.Ext(f.Path))
					if err != nil {
						warn("%s: %v", f.Path, err)
					} else if pp != nil {
						decls, err := parse.Declarations(pp.parser, pp.query, source, f.Path)
						if err != nil {
							warn("%v", err)
						} else {
							r.mismatches = parse.Compare(r.constructs, decls)
						}
					}
				}

				results <- r
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	ordered := make([]scanResult, len(files))
	for r := range results {
		ordered[r.index] = r.scanResult
	}
	return ordered
}

type parserPair struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// parserFor returns the cached parser for ext, creating it on first use.
// It returns nil when no grammar is registered for ext.
func parserFor(cache map[string]*parserPair, ext string) (*parserPair, error) {
	l := lang.ForExtension(ext)
	if l == nil {
		return nil, nil
	}
	if pp, ok := cache[l.Name]; ok {
		return pp, nil
	}
	q, err := l.GetDeclQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to compile query for %s: %w", l.Name, err)
	}
	pp := &parserPair{parser: l.NewParser(), query: q}
	cache[l.Name] = pp
	return pp, nil
}

// parseCommaSeparated splits a comma-separated string into trimmed, non-empty parts.
func parseCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-config": true, "--config": true,
	"-exclude": true, "--exclude": true,
	"-max-file-size": true, "--max-file-size": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			// The terminator leads the positional block so flag parses none of it.
			positional = append([]string{"--"}, append(positional, args[i+1:]...)...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
