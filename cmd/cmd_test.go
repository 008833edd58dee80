package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run 在独立的命令树上执行 args，状态库放在 dir 下。
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	full := append([]string{"--state", filepath.Join(dir, "state.db"), "--output-dir", filepath.Join(dir, "out")}, args...)
	root.SetArgs(full)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseValues(t *testing.T) {
	values, err := parseValues([]byte("date: 2026-02-11\nemployerCompanyName: ABC Corp\nposition: ~\ncompanyAddressLine1: 42\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"date":                "2026-02-11",
		"employerCompanyName": "ABC Corp",
		"position":            "",
		"companyAddressLine1": "42",
	}, values)

	values, err = parseValues([]byte(`{"position": "Dev"}`))
	require.NoError(t, err)
	assert.Equal(t, "Dev", values["position"])

	_, err = parseValues([]byte("- a\n- b\n"))
	assert.Error(t, err)
	_, err = parseValues([]byte("position:\n  nested: true\n"))
	assert.Error(t, err)

	values, err = parseValues(nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"position=Admin=Ops", "date="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"position": "Admin=Ops", "date": ""}, values)

	_, err = parseAssignments([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseAssignments([]string{"=x"})
	assert.Error(t, err)
}

func TestSetAndExportText(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "set", "employerCompanyName=ABC Corp", "position=Administrative Assistant", "date=2026-02-11")
	require.NoError(t, err)

	stdout, _, err := run(t, dir, "export", "text")
	require.NoError(t, err)
	path := filepath.Join(dir, "out", "CoverLetter_ABC_Corp_Administrative_Assistant.txt")
	assert.Contains(t, stdout, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "11 February 2026\nABC Corp\n"))
}

func TestExportBlockedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "set", "position=Engineer")
	require.NoError(t, err)

	_, stderr, err := run(t, dir, "export", "docx")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Company name")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestExportPDFCoreBackend(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "set", "employerCompanyName=ABC Corp", "position=Engineer")
	require.NoError(t, err)

	out := filepath.Join(dir, "letter.pdf")
	debug := filepath.Join(dir, "layout.json")
	_, _, err = run(t, dir, "--backend", "core", "export", "pdf", "--out", out, "--debug", debug)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.FileExists(t, debug)
}

func TestExportToStdout(t *testing.T) {
	dir := t.TempDir()
	values := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(values, []byte("employerCompanyName: ABC Corp\nposition: Engineer\ndate: 2026-02-11\n"), 0o644))

	stdout, _, err := run(t, dir, "--values", values, "export", "text", "--out", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "11 February 2026\nABC Corp\n"))

	// --values 不写回状态库
	stdout, _, err = run(t, dir, "state", "show")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "ABC Corp")
}

func TestTemplateLock(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "tpl.txt")
	require.NoError(t, os.WriteFile(tpl, []byte("Hello {{companyName}} {{salary}}"), 0o644))

	_, _, err := run(t, dir, "template", "edit", tpl)
	require.Error(t, err)

	_, _, err = run(t, dir, "template", "unlock")
	require.NoError(t, err)
	_, stderr, err := run(t, dir, "template", "edit", tpl)
	require.NoError(t, err)
	assert.Contains(t, stderr, "{{salary}}")

	stdout, _, err := run(t, dir, "template", "show")
	require.NoError(t, err)
	assert.Equal(t, "Hello {{companyName}} {{salary}}", stdout)

	_, _, err = run(t, dir, "template", "restore")
	require.NoError(t, err)
	stdout, _, err = run(t, dir, "template", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Dear Hiring Manager")
}

func TestStateReset(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "set", "employerCompanyName=ABC Corp")
	require.NoError(t, err)
	_, _, err = run(t, dir, "state", "reset")
	require.NoError(t, err)

	stdout, _, err := run(t, dir, "state", "show")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "ABC Corp")
	assert.Contains(t, stdout, "version: 2")
}

func TestSetRejectsUnknownField(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "set", "salary=lots")
	assert.Error(t, err)
}

func TestPreviewHTML(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "set", "employerCompanyName=ABC Corp", "position=Engineer")
	require.NoError(t, err)

	page := filepath.Join(dir, "preview.html")
	_, _, err = run(t, dir, "preview", "--html", page)
	require.NoError(t, err)
	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(data), `class="letter"`)
	assert.Contains(t, string(data), `data-overflow="false"`)
}

func TestPreviewTerminal(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "set", "employerCompanyName=ABC Corp", "position=Engineer", "date=2026-02-11")
	require.NoError(t, err)

	t.Setenv("COVERLETTER_PREVIEW_COLUMNS", "72")
	t.Setenv("COVERLETTER_PREVIEW_ROWS", "100")
	stdout, _, err := run(t, dir, "preview")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "11 February 2026\nABC Corp\n"))
	for _, line := range strings.Split(stdout, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 72)
	}
}

func TestValuesRejectedOnMutatingCommands(t *testing.T) {
	dir := t.TempDir()
	values := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(values, []byte("position: Engineer\n"), 0o644))
	_, _, err := run(t, dir, "set", "employerCompanyName=ABC Corp")
	require.NoError(t, err)

	for _, args := range [][]string{
		{"template", "unlock"},
		{"template", "restore"},
		{"state", "reset", "--all"},
		{"set", "position=Clerk"},
	} {
		_, _, err := run(t, dir, append([]string{"--values", values}, args...)...)
		assert.Error(t, err, "%v", args)
	}

	stdout, _, err := run(t, dir, "state", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ABC Corp")
	assert.Contains(t, stdout, "editUnlocked: false")

	// 只读命令仍可使用 --values
	_, _, err = run(t, dir, "--values", values, "state", "show")
	assert.NoError(t, err)
}
