package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTestFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func createSampleProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "Widget.cs", `/// <summary>
/// Represents a widget.
/// </summary>
public class Widget {}
`)
	writeTestFile(t, dir, "Shapes/Point.cs", `namespace Shapes
{
    /// <summary>A 2D point. Immutable.</summary>
    public struct Point { }

    internal enum Color { Red, Green }

    // public interface IHidden { }
    public interface IShape { }
}
`)
	return dir
}

// runDoc runs the main command and returns the generated document.
func runDoc(t *testing.T, srcDir, template string, extra ...string) (string, string) {
	t.Helper()
	tmpl := writeTestFile(t, t.TempDir(), "template.md", template)
	outDir := t.TempDir()

	var stdout, stderr bytes.Buffer
	args := append(extra, srcDir, tmpl, outDir, "OUT.md")
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	data, err := os.ReadFile(filepath.Join(outDir, "OUT.md"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	return string(data), stderr.String()
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "Widget.cs", "/// <summary>\n/// Represents a widget.\n/// </summary>\npublic class Widget {}\n")

	got, _ := runDoc(t, dir, "## Classes\n- {{class}}: [one_sentence_summary]\n")
	want := "## Classes\n- Widget: Represents a widget\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunAllKinds(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	template := `# API

## Classes
- {{ class }}: [summary]

## Structs
- {{struct}}: [one_sentence_summary]

## Enums
- {{enum}}: [summary]

## Interfaces
- {{interface}}
`
	got, _ := runDoc(t, dir, template)
	want := `# API

## Classes
- Widget: Represents a widget.

## Structs
- Point: A 2D point

## Enums
- Color: No summary provided

## Interfaces
- IShape
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRunPartialClassesAcrossFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "A.cs", "/// <summary>First half.</summary>\npublic partial class Repo {}\npublic struct Pair {}\n")
	writeTestFile(t, dir, "B.cs", "/// <summary>Second half.</summary>\npublic partial class Repo {}\npublic struct Pair {}\n")

	got, _ := runDoc(t, dir, "{{class}}: [summary]\n{{struct}}\n")
	want := "Repo: First half.\nPair\nPair\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunNoPlaceholders(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	template := "# Title\n\nNothing to expand here.\n"
	got, _ := runDoc(t, dir, template)
	if got != template {
		t.Errorf("output = %q, want template unchanged", got)
	}
}

func TestRunNoSourceFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "readme.txt", "nothing here")

	got, stderr := runDoc(t, dir, "# Classes\n- {{class}}\n")
	if got != "# Classes\n" {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(stderr, "no source files found") {
		t.Errorf("expected warning, stderr: %s", stderr)
	}
}

func TestRunSkipsUnreadableFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "Good.cs", "public class Good {}\n")
	writeTestFile(t, dir, "Binary.cs", "public class Bad {}\n\xff\xfe\n")

	got, stderr := runDoc(t, dir, "{{class}}\n")
	if got != "Good\n" {
		t.Errorf("output = %q, want only Good", got)
	}
	if !strings.Contains(stderr, "Warning: Binary.cs: not valid UTF-8") {
		t.Errorf("expected UTF-8 warning, stderr: %s", stderr)
	}
}

func TestRunMaxFileSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "Small.cs", "class Small {}\n")
	writeTestFile(t, dir, "Large.cs", "class Large {}\n"+strings.Repeat("// padding\n", 20))

	got, stderr := runDoc(t, dir, "{{class}}\n", "--max-file-size", "64")
	if got != "Small\n" {
		t.Errorf("output = %q, want only Small", got)
	}
	if !strings.Contains(stderr, "Large.cs: skipped") {
		t.Errorf("expected size warning, stderr: %s", stderr)
	}
}

func TestRunExclude(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	got, _ := runDoc(t, dir, "{{class}}\n{{struct}}\n", "--exclude", "Shapes/**")
	if got != "Widget\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunConfig(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	cfg := writeTestFile(t, t.TempDir(), "declmap.yaml", `
template:
  placeholders:
    struct: ["<<struct>>"]
  fallback: "TBD"
`)

	got, _ := runDoc(t, dir, "<<struct>> / {{enum}}: [summary]\n", "-config", cfg)
	if got != "Point / {{enum}}: A 2D point. Immutable.\n" {
		t.Errorf("output = %q", got)
	}

	got, _ = runDoc(t, dir, "{{enum}}: [summary]\n", "-config", cfg)
	if got != "Color: TBD\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunOverwritesOutput(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	tmpl := writeTestFile(t, t.TempDir(), "t.md", "{{interface}}\n")
	outDir := t.TempDir()
	writeTestFile(t, outDir, "OUT.md", "stale content that is longer than the result\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir, tmpl, outDir, "OUT.md"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "OUT.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "IShape\n" {
		t.Errorf("output = %q", data)
	}
}

func TestRunCreatesOutputDir(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	tmpl := writeTestFile(t, t.TempDir(), "t.md", "{{interface}}\n")
	outDir := filepath.Join(t.TempDir(), "docs", "api")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir, tmpl, outDir, "OUT.md"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "OUT.md")); err != nil {
		t.Errorf("output not written: %v", err)
	}
	if !strings.Contains(stderr.String(), "wrote 4 constructs") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunMissingTemplate(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	outDir := t.TempDir()

	var stdout, stderr bytes.Buffer
	err := run([]string{dir, filepath.Join(dir, "missing.md"), outDir, "OUT.md"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	if !strings.Contains(err.Error(), "loading template") {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "OUT.md")); err == nil {
		t.Error("output should not be written when the template fails to load")
	}
}

func TestRunOutputWriteFailure(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	tmpl := writeTestFile(t, t.TempDir(), "t.md", "x\n")
	// The output directory path is an existing regular file.
	blocker := writeTestFile(t, t.TempDir(), "file", "")

	var stdout, stderr bytes.Buffer
	err := run([]string{dir, tmpl, blocker, "OUT.md"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error when output cannot be written")
	}
	if !strings.Contains(err.Error(), "output") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunList(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	tmpl := writeTestFile(t, t.TempDir(), "t.md", "x\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-list", dir, tmpl, t.TempDir(), "OUT.md"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"constructs[4]{kind,name,access,file,line,summary}:",
		"class,Widget,public,Widget.cs,4,Represents a widget.",
		"enum,Color,internal,Shapes/Point.cs,6,\"\"",
		"  interface,1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestRunVerify(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "Mixed.cs", `public class Real {}
public class Holder
{
    string s = "class Phantom";
}
`)

	_, stderr := runDoc(t, dir, "{{class}}\n", "-verify")
	if !strings.Contains(stderr, "Mixed.cs:4: class Phantom not confirmed by parser") {
		t.Errorf("expected Phantom warning, stderr: %s", stderr)
	}
	if strings.Contains(stderr, "Real") || strings.Contains(stderr, "Holder") {
		t.Errorf("unexpected warning, stderr: %s", stderr)
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{"-V"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "declmap") {
		t.Errorf("version output: %q", stdout.String())
	}
}

func TestRunWrongArgCount(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{t.TempDir()}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for missing arguments")
	}
	if !strings.Contains(stderr.String(), "Usage: declmap") {
		t.Errorf("usage not printed: %s", stderr.String())
	}
}

func TestRunDoubleDashAfterSource(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	tmpl := writeTestFile(t, t.TempDir(), "t.md", "{{interface}}\n")
	outDir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir, "--", tmpl, outDir, "OUT.md"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	data, err := os.ReadFile(filepath.Join(outDir, "OUT.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "IShape\n" {
		t.Errorf("output = %q", data)
	}
}

func TestRunNotADirectory(t *testing.T) {
	t.Parallel()
	f := writeTestFile(t, t.TempDir(), "file.txt", "hi")
	tmpl := writeTestFile(t, t.TempDir(), "t.md", "x\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{f, tmpl, t.TempDir(), "OUT.md"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for non-directory")
	}
	if !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "flags after positional",
			in:   []string{"src", "t.md", "--exclude", "obj/**", "out", "A.md", "-list"},
			want: []string{"--exclude", "obj/**", "-list", "src", "t.md", "out", "A.md"},
		},
		{
			name: "double dash",
			in:   []string{"-verify", "--", "-odd-dir", "t.md"},
			want: []string{"-verify", "--", "-odd-dir", "t.md"},
		},
		{
			name: "positional before double dash",
			in:   []string{"src", "--", "t.md", "out", "A.md"},
			want: []string{"--", "src", "t.md", "out", "A.md"},
		},
		{
			name: "flag before double dash",
			in:   []string{"src", "-list", "--", "-odd.md", "out", "A.md"},
			want: []string{"-list", "--", "src", "-odd.md", "out", "A.md"},
		},
		{
			name: "value flag",
			in:   []string{"src", "-config", "c.yaml"},
			want: []string{"-config", "c.yaml", "src"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, reorderArgs(tt.in)); diff != "" {
				t.Errorf("reorderArgs (-want +got):\n%s", diff)
			}
		})
	}
}
