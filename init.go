package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phobologic/declmap/internal/config"
	"github.com/phobologic/declmap/internal/model"
)

const (
	sentinelStart = "<!-- declmap:start -->"
	sentinelEnd   = "<!-- declmap:end -->"

	defaultTemplatePath = "declmap.tmpl.md"
)

var sectionTitles = map[model.Kind]string{
	model.Class:     "Classes",
	model.Struct:    "Structs",
	model.Enum:      "Enums",
	model.Interface: "Interfaces",
}

// runInit implements the `declmap init` subcommand, which writes (or updates)
// a starter template section listing every construct kind.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("declmap init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		dryRun     bool
		configPath string
	)
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	fs.StringVar(&configPath, "config", "", "YAML or JSON config file with custom template tokens")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: declmap init [flags] [template-file]

Write a starter template section to template-file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

template-file defaults to ./%s.

Flags:
`, defaultTemplatePath)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.New()
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	section := generateSection(cfg.Template)

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := defaultTemplatePath
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote declmap section to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped starter template, one heading
// and placeholder line per construct kind.
func generateSection(t config.Template) string {
	var b strings.Builder
	b.WriteString(sentinelStart + "\n")
	for i, k := range model.Kinds {
		if i > 0 {
			b.WriteString("\n")
		}
		placeholder := "{{" + k.Keyword() + "}}"
		if tokens := t.Placeholders[k]; len(tokens) > 0 {
			placeholder = tokens[0]
		}
		fmt.Fprintf(&b, "## %s\n\n", sectionTitles[k])
		fmt.Fprintf(&b, "- **`%s`**: %s\n", placeholder, t.OneSentenceToken)
	}
	b.WriteString(sentinelEnd)
	return b.String()
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if content == "" {
		return section + "\n"
	}

	// Append, ensuring a blank line separator.
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
