package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nao1215/tagbalance/internal/config"
	"github.com/nao1215/tagbalance/internal/database"
	"github.com/nao1215/tagbalance/internal/tagscan"
)

// writeDocument creates a markup file in dir and returns its path.
func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// runCLI runs the command line and returns the exit status and both outputs.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunCheckText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "unbalanced div",
			content: "<div><div></div>",
			want: []string{
				"div       :   2 open /   1 closed ❌ (difference:  +1)",
			},
		},
		{
			name:    "balanced div",
			content: "<div></div>",
			want: []string{
				"div       :   1 open /   1 closed ✅",
			},
		},
		{
			name:    "self-closing counts as opening",
			content: "<p/>",
			want: []string{
				"p         :   1 open /   0 closed ❌ (difference:  +1)",
			},
		},
		{
			name:    "case-insensitive and sorted",
			content: "<SPAN></span><DIV class=\"x\"></div><a href=\"#\"></a>",
			want: []string{
				"a         :   1 open /   1 closed ✅",
				"div       :   1 open /   1 closed ✅",
				"span      :   1 open /   1 closed ✅",
			},
		},
		{
			name:    "unknown tags are ignored",
			content: "<table><tr><td></td></tr></table>",
			want:    nil,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeDocument(t, dir, "doc"+string(rune('a'+i))+".html", tt.content)

			code, stdout, stderr := runCLI(t, path)
			if code != 0 {
				t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
			}
			if stderr != "" {
				t.Errorf("expected empty stderr, got %q", stderr)
			}

			lines := []string{
				"Tag analysis for file: " + path,
				strings.Repeat("=", 40),
			}
			lines = append(lines, tt.want...)
			want := strings.Join(lines, "\n") + "\n"
			if stdout != want {
				t.Errorf("unexpected output:\ngot:\n%s\nwant:\n%s", stdout, want)
			}
		})
	}
}

func TestRunCheckMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("prints notice on stdout and exits 1", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(dir, "missing.html")
		code, stdout, stderr := runCLI(t, missing)
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if want := "Error: file '" + missing + "' not found!\n"; stdout != want {
			t.Errorf("expected %q, got %q", want, stdout)
		}
		if stderr != "" {
			t.Errorf("expected empty stderr, got %q", stderr)
		}
	})

	t.Run("no report when any file is missing", func(t *testing.T) {
		t.Parallel()

		existing := writeDocument(t, dir, "present.html", "<div></div>")
		missing := filepath.Join(dir, "absent.html")

		code, stdout, _ := runCLI(t, existing, missing)
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if strings.Contains(stdout, "Tag analysis") {
			t.Errorf("expected no report, got %q", stdout)
		}
	})

	t.Run("russian notice", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(dir, "nope.html")
		code, stdout, _ := runCLI(t, "--lang", "ru", missing)
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if want := "Ошибка: Файл '" + missing + "' не найден!\n"; stdout != want {
			t.Errorf("expected %q, got %q", want, stdout)
		}
	})
}

func TestRunCheckErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := writeDocument(t, dir, "index.html", "<div></div>")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no files", nil, 2, "no file specified"},
		{"unknown flag", []string{"--nope", doc}, 2, "unknown flag: --nope"},
		{"bad flag value", []string{"--concurrency", "many", doc}, 2, "invalid argument"},
		{"conflicting formats", []string{"--json", "--markdown", doc}, 1, "conflicting report formats"},
		{"unsupported language", []string{"--lang", "!!", doc}, 1, "unsupported language"},
		{"invalid concurrency", []string{"--concurrency", "0", doc}, 1, "invalid concurrency"},
		{"tee without output", []string{"--tee", doc}, 1, "--tee requires --output"},
		{"missing config file", []string{"-c", filepath.Join(dir, "none.yaml"), doc}, 1, "configuration file not found"},
		{"directory argument", []string{dir}, 1, "failed to check"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, stdout, stderr := runCLI(t, tt.args...)
			if code != tt.wantCode {
				t.Errorf("expected exit %d, got %d", tt.wantCode, code)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("expected stderr to contain %q, got %q", tt.wantErr, stderr)
			}
			if hasUsage := strings.Contains(stderr, "Usage: tagbalance <file> [file...]"); hasUsage != (tt.wantCode == 2) {
				t.Errorf("usage hint shown = %v for exit %d: %q", hasUsage, tt.wantCode, stderr)
			}
			if stdout != "" {
				t.Errorf("expected empty stdout, got %q", stdout)
			}
		})
	}
}

func TestRunCheckRussian(t *testing.T) {
	t.Parallel()

	path := writeDocument(t, t.TempDir(), "index.html", "<div><div></div>")

	code, stdout, _ := runCLI(t, "--lang", "ru", path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	want := "Анализ тегов для файла: " + path + "\n" +
		strings.Repeat("=", 40) + "\n" +
		"div       :   2 открыт /   1 закрыт ❌ (разница:  +1)\n"
	if stdout != want {
		t.Errorf("unexpected output:\ngot:\n%s\nwant:\n%s", stdout, want)
	}
}

func TestRunCheckJSON(t *testing.T) {
	t.Parallel()

	path := writeDocument(t, t.TempDir(), "index.html", "<div><div></div><p></p>")

	code, stdout, stderr := runCLI(t, "--json", path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}

	var got struct {
		File    string `json:"file"`
		Summary struct {
			Total      int `json:"total"`
			Balanced   int `json:"balanced"`
			Unbalanced int `json:"unbalanced"`
		} `json:"summary"`
		Tags []struct {
			Name string `json:"name"`
			Open int    `json:"open"`
			Diff int    `json:"diff"`
		} `json:"tags"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}

	if got.File != path {
		t.Errorf("expected file %q, got %q", path, got.File)
	}
	if got.Summary.Total != 2 || got.Summary.Balanced != 1 || got.Summary.Unbalanced != 1 {
		t.Errorf("unexpected summary %+v", got.Summary)
	}
	if len(got.Tags) != 2 || got.Tags[0].Name != "div" || got.Tags[0].Diff != 1 || got.Tags[1].Name != "p" {
		t.Errorf("unexpected tags %+v", got.Tags)
	}
}

func TestRunCheckMarkdownToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDocument(t, dir, "index.html", "<div></div>")
	reportPath := filepath.Join(dir, "reports", "out.md")

	code, stdout, stderr := runCLI(t, "--markdown", "-o", reportPath, path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout when writing to a file, got %q", stdout)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(content), "# Tag Balance Report") {
		t.Errorf("expected markdown title, got:\n%s", content)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(reportPath)
		if err != nil {
			t.Fatalf("failed to stat report: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	}
}

func TestRunCheckTee(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDocument(t, dir, "index.html", "<div><div></div>")
	reportPath := filepath.Join(dir, "report.txt")

	code, stdout, stderr := runCLI(t, "-o", reportPath, "--tee", path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	want := "Tag analysis for file: " + path + "\n" +
		strings.Repeat("=", 40) + "\n" +
		"div       :   2 open /   1 closed ❌ (difference:  +1)\n"
	if string(content) != want {
		t.Errorf("unexpected file report:\n%s", content)
	}
	if stdout != want {
		t.Errorf("unexpected stdout report:\n%s", stdout)
	}
}

func TestRunCheckConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDocument(t, dir, "index.html", "<table><tr></tr></table><div>")
	cfgPath := writeDocument(t, dir, "tagbalance.yaml", "lang: ru\nextraTags: [table, tr]\n")

	t.Run("file widens allow-list and sets language", func(t *testing.T) {
		t.Parallel()

		code, stdout, stderr := runCLI(t, "-c", cfgPath, path)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}
		for _, want := range []string{
			"Анализ тегов для файла: " + path,
			"div       :   1 открыт /   0 закрыт ❌ (разница:  +1)",
			"table     :   1 открыт /   1 закрыт ✅",
			"tr        :   1 открыт /   1 закрыт ✅",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
			}
		}
	})

	t.Run("flag overrides file", func(t *testing.T) {
		t.Parallel()

		code, stdout, _ := runCLI(t, "-c", cfgPath, "--lang", "en", path)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if !strings.HasPrefix(stdout, "Tag analysis for file: ") {
			t.Errorf("expected English header, got:\n%s", stdout)
		}
	})
}

func TestRunCheckMultipleFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeDocument(t, dir, "b.html", "<div></div>")
	second := writeDocument(t, dir, "a.html", "<p>")

	code, stdout, _ := runCLI(t, "-b", "2", first, second)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	i := strings.Index(stdout, "Tag analysis for file: "+first)
	j := strings.Index(stdout, "Tag analysis for file: "+second)
	if i < 0 || j < 0 {
		t.Fatalf("expected both reports, got:\n%s", stdout)
	}
	if i > j {
		t.Errorf("expected reports in argument order, got:\n%s", stdout)
	}
}

func TestRunCheckSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbDir := filepath.Join(dir, "db")
	path := writeDocument(t, dir, "index.html", "<div><div></div>")

	code, _, stderr := runCLI(t, "--save", "--db-dir", dbDir, path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	latest, err := db.GetLatestCheckResult(t.Context(), historyKey(path))
	if err != nil {
		t.Fatalf("failed to get latest result: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a saved result")
	}
	if tc, ok := latest.Lookup("div"); !ok || tc.Open != 2 || tc.Close != 1 {
		t.Errorf("unexpected div tally %+v", tc)
	}
}

func TestHistoryKey(t *testing.T) {
	t.Parallel()

	if got := historyKey("/abs/index.html"); got != filepath.Clean("/abs/index.html") && runtime.GOOS != "windows" {
		t.Errorf("expected absolute path unchanged, got %q", got)
	}

	got := historyKey("index.html")
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
	if filepath.Base(got) != "index.html" {
		t.Errorf("expected base index.html, got %q", got)
	}
}

func TestSentinelErrorsAreReachable(t *testing.T) {
	t.Parallel()

	err := tagscan.Exists(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, tagscan.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}

	cfg := config.NewConfig()
	if err := cfg.Validate(); !errors.Is(err, config.ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}
}
