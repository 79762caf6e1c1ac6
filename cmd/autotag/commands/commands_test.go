package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/autotag/internal/config"
	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
	"git.home.luguber.info/inful/autotag/internal/pipeline"
)

const post = "---\ntitle: Deploying Docusaurus\n---\nWe host the site on S3 behind CloudFront.\n"

// isolate clears autotag related environment and moves into an empty dir.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{config.EnvAutotagEnv, config.EnvNodeEnv, config.EnvAPIKey, config.EnvOpenAIKey, config.EnvModel, config.EnvBaseURL} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// fakeModel serves chat completions answering with content.
func fakeModel(t *testing.T, content string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-5-mini",
			"choices": []any{map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestTagCmd_NonProduction_LeavesFilesAlone(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "blog", "a.md")
	writeFile(t, path, post)

	var out bytes.Buffer
	cli := &CLI{Config: config.DefaultPath}
	cmd := &TagCmd{Path: dir, Format: "text"}
	require.NoError(t, cmd.Run(&Global{Stdout: &out}, cli))

	require.Equal(t, post, readFile(t, path))
	require.Contains(t, out.String(), "0 tagged, 1 unchanged")
}

func TestTagCmd_Production_WritesTagsAndUsesCache(t *testing.T) {
	dir := isolate(t)
	srv, calls := fakeModel(t, `["Docusaurus", "AWS", "CloudFront"]`)
	t.Setenv(config.EnvAPIKey, "test-key")
	t.Setenv(config.EnvBaseURL, srv.URL)

	cfgPath := filepath.Join(dir, "autotag.yaml")
	writeFile(t, cfgPath, "cache:\n  enabled: true\n  path: "+filepath.Join(dir, "cache.db")+"\n")
	path := filepath.Join(dir, "blog", "a.md")
	writeFile(t, path, post)

	var out bytes.Buffer
	cli := &CLI{Config: cfgPath}
	cmd := &TagCmd{Path: dir, Format: "json", RunFlags: RunFlags{Production: true}}
	require.NoError(t, cmd.Run(&Global{Stdout: &out}, cli))

	var report pipeline.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report.Files, 1)
	require.Equal(t, pipeline.StatusTagged, report.Files[0].Status)
	require.NotNil(t, report.CacheEntries)
	require.Equal(t, 1, *report.CacheEntries)
	require.Equal(t,
		"---\ntitle: Deploying Docusaurus\ntags:\n  - Docusaurus\n  - AWS\n  - CloudFront\n---\nWe host the site on S3 behind CloudFront.\n",
		readFile(t, path))
	require.EqualValues(t, 1, calls.Load())

	// Identical prompt on the next run is answered from the cache.
	writeFile(t, path, post)
	out.Reset()
	require.NoError(t, cmd.Run(&Global{Stdout: &out}, cli))
	require.EqualValues(t, 1, calls.Load())
}

func TestTagCmd_MissingAPIKey_FallsBack(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "blog", "a.md")
	writeFile(t, path, post)

	var out bytes.Buffer
	cmd := &TagCmd{Path: dir, Format: "text", RunFlags: RunFlags{Production: true}}
	require.NoError(t, cmd.Run(&Global{Stdout: &out}, &CLI{Config: config.DefaultPath}))
	require.Equal(t, post, readFile(t, path))
	require.NotContains(t, out.String(), "cached response")
}

func TestTagCmd_InvalidPolicy_ValidationExitCode(t *testing.T) {
	dir := isolate(t)
	cmd := &TagCmd{Path: dir, Format: "text", RunFlags: RunFlags{Policy: "sometimes"}}
	err := cmd.Run(&Global{Stdout: &bytes.Buffer{}}, &CLI{Config: config.DefaultPath})
	require.Error(t, err)
	require.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestTagCmd_ExplicitMissingConfig_ConfigError(t *testing.T) {
	dir := isolate(t)
	cmd := &TagCmd{Path: dir, Format: "text"}
	err := cmd.Run(&Global{Stdout: &bytes.Buffer{}}, &CLI{Config: filepath.Join(dir, "custom.yaml")})
	require.Error(t, err)
	require.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestTagCmd_BrokenFile_FilesystemExitCode(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "blog", "broken.md"), "---\ntitle: x\nno end\n")

	var out bytes.Buffer
	err := (&TagCmd{Path: dir, Format: "text"}).Run(&Global{Stdout: &out}, &CLI{Config: config.DefaultPath})
	require.Error(t, err)
	require.Equal(t, 11, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	require.Contains(t, out.String(), "failed blog/broken.md")
}

func TestSuggestCmd_PrintsTagsWithoutWriting(t *testing.T) {
	dir := isolate(t)
	srv, _ := fakeModel(t, "Docusaurus, AWS")
	t.Setenv(config.EnvAPIKey, "test-key")
	t.Setenv(config.EnvBaseURL, srv.URL)
	path := filepath.Join(dir, "blog", "a.md")
	writeFile(t, path, "---\ntags: [docusaurus]\n---\nbody\n")

	var out bytes.Buffer
	cmd := &SuggestCmd{File: path, Format: "text", RunFlags: RunFlags{Production: true}}
	require.NoError(t, cmd.Run(&Global{Stdout: &out}, &CLI{Config: config.DefaultPath}))
	require.Equal(t, "docusaurus\nAWS\n", out.String())
	require.Equal(t, "---\ntags: [docusaurus]\n---\nbody\n", readFile(t, path))
}

func TestInitCmd(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "autotag.yaml")
	cli := &CLI{Config: cfgPath}

	var out bytes.Buffer
	require.NoError(t, (&InitCmd{}).Run(&Global{Stdout: &out}, cli))
	require.Contains(t, out.String(), cfgPath)
	_, err := config.Load(cfgPath)
	require.NoError(t, err)

	err = (&InitCmd{}).Run(&Global{Stdout: &out}, cli)
	require.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{Stdout: &out}, cli))
}
