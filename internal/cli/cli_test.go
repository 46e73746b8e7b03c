package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/causalgraph/pkg/config"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/dot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioCSV = "a,b\n0,0.5\n0.02,0\n"

func streams(in string) (IOStreams, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return IOStreams{In: strings.NewReader(in), Out: &out, Err: &errOut}, &out, &errOut
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuild(t *testing.T) {
	t.Run("Target from stdin", func(t *testing.T) {
		s, out, _ := streams(scenarioCSV)
		err := Build(s, BuildOptions{Threshold: domain.DefaultThreshold, Format: "target"})
		require.NoError(t, err)
		assert.Equal(t, "digraph {a;b;b -> a [label=0.5];a -> b [label=0.02]}\n", out.String())
	})

	t.Run("Native from file with label override", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "m.csv", "0,0.5\n0.02,0\n")
		s, out, _ := streams("")
		err := Build(s, BuildOptions{MatrixPath: path, Labels: []string{"x", "y"}, Threshold: 0.1})
		require.NoError(t, err)
		assert.Equal(t, "digraph {\n\tx\n\ty\n\ty -> x [label=0.5]\n}\n", out.String())
	})

	t.Run("Summary goes to the error stream", func(t *testing.T) {
		s, out, errOut := streams(scenarioCSV)
		err := Build(s, BuildOptions{Threshold: domain.DefaultThreshold, Format: "target", Summary: true})
		require.NoError(t, err)
		assert.NotContains(t, out.String(), "  0.5")
		assert.Contains(t, errOut.String(), "b -> a")
	})

	t.Run("Unknown overlay node", func(t *testing.T) {
		s, _, _ := streams(scenarioCSV)
		err := Build(s, BuildOptions{Threshold: domain.DefaultThreshold, Treatment: "z"})
		assert.ErrorIs(t, err, domain.ErrUnknownNode)
	})

	t.Run("Label count mismatch", func(t *testing.T) {
		s, _, _ := streams(scenarioCSV)
		err := Build(s, BuildOptions{Labels: []string{"only"}, Threshold: domain.DefaultThreshold})
		assert.ErrorIs(t, err, domain.ErrLabelCount)
	})

	t.Run("No input", func(t *testing.T) {
		var out bytes.Buffer
		err := Build(IOStreams{Out: &out}, BuildOptions{})
		assert.ErrorIs(t, err, ErrNoInput)
	})
}

func TestNormalize(t *testing.T) {
	s, out, _ := streams("digraph {\n\tx0\n\tx1\n\tx1 -> x0 [label=0.5]\n}\n")
	require.NoError(t, Normalize(s, ""))
	assert.Equal(t, "digraph {x0;x1;x1 -> x0 [label=0.5]}\n", out.String())

	s, _, _ = streams("digraph { a -> }")
	err := Normalize(s, "-")
	var syntaxErr *dot.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 1, syntaxErr.Line)
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.dot", "digraph { a -> b [label=0.5] }")
	newPath := writeFile(t, dir, "new.dot", "digraph { a -> b [label=0.7]; b -> c [label=1] }")

	s, out, _ := streams("")
	require.NoError(t, Diff(s, oldPath, newPath))

	var diff domain.GraphDiff
	require.NoError(t, json.Unmarshal(out.Bytes(), &diff))
	assert.Equal(t, []string{"c"}, diff.AddedNodes)
	require.Len(t, diff.AddedEdges, 1)
	assert.Equal(t, "b", diff.AddedEdges[0].From)
	require.Len(t, diff.Relabelled, 1)

	err := Diff(s, writeFile(t, dir, "bad.dot", "digraph {"), newPath)
	assert.ErrorIs(t, err, dot.ErrSyntax)
}

func TestAnalyze_PrecomputedMatrix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "adjacency.csv", scenarioCSV)
	cfgPath := writeFile(t, dir, "analysis.yaml", `
treatment: b
outcome: a
discovery:
  matrix: adjacency.csv
`)

	t.Run("Target", func(t *testing.T) {
		s, out, _ := streams("")
		err := Analyze(context.Background(), s, AnalyzeOptions{ConfigPath: cfgPath, Output: "target"})
		require.NoError(t, err)
		assert.Equal(t, "digraph analysis {a;b;b -> a [label=0.5];a -> b [label=0.02]}\n", out.String())
	})

	t.Run("Threshold override", func(t *testing.T) {
		s, out, _ := streams("")
		err := Analyze(context.Background(), s, AnalyzeOptions{
			ConfigPath: cfgPath,
			Overrides:  []string{"threshold=0.1", "name=g"},
			Output:     "target",
		})
		require.NoError(t, err)
		assert.Equal(t, "digraph g {a;b;b -> a [label=0.5]}\n", out.String())
	})

	t.Run("Report", func(t *testing.T) {
		s, out, _ := streams("")
		err := Analyze(context.Background(), s, AnalyzeOptions{ConfigPath: cfgPath})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "```mermaid")
		assert.Contains(t, out.String(), "digraph analysis {a;b;b -> a [label=0.5];a -> b [label=0.02]}")
	})

	t.Run("Store directory", func(t *testing.T) {
		storeDir := t.TempDir()
		s, _, _ := streams("")
		err := Analyze(context.Background(), s, AnalyzeOptions{ConfigPath: cfgPath, Output: "dot", StoreDir: storeDir})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(storeDir, "analysis.dot"))
		require.NoError(t, err)
		assert.Equal(t, "digraph analysis {\n\ta\n\tb\n\tb -> a [label=0.5]\n\ta -> b [label=0.02]\n}\n", string(data))
	})

	t.Run("Validation", func(t *testing.T) {
		s, _, _ := streams("")
		err := Analyze(context.Background(), s, AnalyzeOptions{ConfigPath: cfgPath, Overrides: []string{"outcome="}})
		require.Error(t, err)
		assert.Len(t, config.ValidationErrors(err), 1)
	})
}

func TestAnalyze_ProcessTools(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}

	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "idx,t,y\n0,0,0.1\n1,1,1.6\n2,1,1.4\n")
	writeFile(t, dir, "tools.yaml", `
tools:
  - name: discover
    command: /bin/sh
    args: ["-c", "echo '{\"labels\": [\"t\", \"y\"], \"matrix\": [[0, 0], [1.5, 0]]}'"]
`)
	cfgPath := writeFile(t, dir, "analysis.yaml", `
name: demo
dataset: data.csv
treatment: t
outcome: y
tools_file: tools.yaml
discovery:
  tool: discover
estimation:
  tool: estimate
tools:
  - name: estimate
    command: /bin/sh
    args: ["-c", "echo '{\"estimand\": \"backdoor\", \"value\": 1.5, \"ci_low\": 1.4, \"ci_high\": 1.6, \"p_value\": 0.001}'"]
`)

	s, out, _ := streams("")
	err := Analyze(context.Background(), s, AnalyzeOptions{ConfigPath: cfgPath, Output: "json"})
	require.NoError(t, err)

	var res struct {
		Target   string `json:"target"`
		Estimate struct {
			Value float64 `json:"value"`
		} `json:"estimate"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "digraph demo {t;y;t -> y [label=1.5]}", res.Target)
	assert.InDelta(t, 1.5, res.Estimate.Value, 1e-9)
}

func TestAnalyze_UnknownDatasetColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "idx,t,z\n0,0,0.1\n1,1,1.6\n")
	cfgPath := writeFile(t, dir, "analysis.yaml", `
name: demo
dataset: data.csv
treatment: t
outcome: y
discovery:
  tool: discover
tools:
  - name: discover
    command: /bin/false
`)

	s, _, _ := streams("")
	err := Analyze(context.Background(), s, AnalyzeOptions{ConfigPath: cfgPath})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownColumn)
	assert.Contains(t, err.Error(), `"y"`)
}

func TestNewServeHandler(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		h, closeStore, err := NewServeHandler(context.Background(), ServeOptions{Threshold: domain.DefaultThreshold})
		require.NoError(t, err)
		defer closeStore()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		h, closeStore, err := NewServeHandler(context.Background(), ServeOptions{
			StoreOptions: StoreOptions{RedisAddr: mr.Addr()},
			Threshold:    domain.DefaultThreshold,
		})
		require.NoError(t, err)
		defer closeStore()

		body := `{"name":"g","matrix":[[0,0.5],[0.02,0]],"labels":["a","b"]}`
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphs", strings.NewReader(body)))
		assert.Equal(t, http.StatusCreated, rec.Code)

		keys := mr.Keys()
		assert.Contains(t, keys, "causalgraph:graph:g")
	})

	t.Run("Directory", func(t *testing.T) {
		dir := t.TempDir()
		h, closeStore, err := NewServeHandler(context.Background(), ServeOptions{
			StoreOptions: StoreOptions{Dir: dir},
			Threshold:    domain.DefaultThreshold,
		})
		require.NoError(t, err)
		defer closeStore()

		body := `{"name":"g","matrix":[[0,0.5],[0.02,0]],"labels":["a","b"]}`
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphs", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code)

		assert.FileExists(t, filepath.Join(dir, "g.json"))
		assert.FileExists(t, filepath.Join(dir, "g.dot"))
	})

	t.Run("Unreachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := NewServeHandler(context.Background(), ServeOptions{StoreOptions: StoreOptions{RedisAddr: addr}})
		assert.Error(t, err)
	})
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	err := ServeMCP(context.Background(), MCPOptions{Transport: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown transport")
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("cfg", "m.csv"), resolvePath("cfg", "m.csv"))
	assert.Equal(t, "/abs/m.csv", resolvePath("cfg", "/abs/m.csv"))
	assert.Equal(t, "m.csv", resolvePath("", "m.csv"))
}
