package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/causalgraph/pkg/adapters/memory"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestBuildGraph(t *testing.T) {
	store := memory.NewStore()
	s := NewServer(store)

	// Arguments arrive as decoded JSON.
	out, isErr := call(t, s.handleBuildGraph, map[string]any{
		"matrix": []any{[]any{0.0, 0.5}, []any{0.02, 0.0}},
		"labels": []any{"a", "b"},
		"name":   "scenario",
		"format": "target",
	})
	require.False(t, isErr, out)
	assert.Equal(t, "digraph scenario {a;b;b -> a [label=0.5];a -> b [label=0.02]}", out)

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"scenario"}, names)

	out, isErr = call(t, s.handleBuildGraph, map[string]any{
		"matrix":    []any{[]any{0.0, 0.5}, []any{0.02, 0.0}},
		"threshold": 0.1,
	})
	require.False(t, isErr, out)
	assert.Equal(t, "digraph {\n\tx0\n\tx1\n\tx1 -> x0 [label=0.5]\n}\n", out)
}

func TestBuildGraph_Errors(t *testing.T) {
	s := NewServer(memory.NewStore())

	out, isErr := call(t, s.handleBuildGraph, map[string]any{"matrix": []any{[]any{0.0, 1.0}}})
	assert.True(t, isErr)
	assert.Contains(t, out, "not square")

	out, isErr = call(t, s.handleBuildGraph, map[string]any{"matrix": "nope"})
	assert.True(t, isErr)
	assert.Contains(t, out, "invalid arguments")

	_, isErr = call(t, s.handleBuildGraph, map[string]any{"matrix": []any{[]any{0.0}}, "format": "png"})
	assert.True(t, isErr)
}

func TestNormalizeGraph(t *testing.T) {
	s := NewServer(memory.NewStore())

	out, isErr := call(t, s.handleNormalize, map[string]any{"dot": "digraph {\n\tx0\n\tx1\n\tx1 -> x0 [label=0.5]\n}\n"})
	require.False(t, isErr, out)
	assert.Equal(t, "digraph {x0;x1;x1 -> x0 [label=0.5]}", out)

	out, isErr = call(t, s.handleNormalize, map[string]any{"dot": "digraph { a -> }"})
	assert.True(t, isErr)
	assert.Contains(t, out, "1:16:")
	assert.Contains(t, out, "expected")

	_, isErr = call(t, s.handleNormalize, map[string]any{})
	assert.True(t, isErr)
}

func TestGetAndListGraphs(t *testing.T) {
	s := NewServer(memory.NewStore())

	_, isErr := call(t, s.handleGetGraph, map[string]any{"name": "missing"})
	assert.True(t, isErr)

	_, isErr = call(t, s.handleBuildGraph, map[string]any{"matrix": []any{[]any{0.0, 0.3}, []any{0.0, 0.0}}, "name": "g"})
	require.False(t, isErr)

	out, isErr := call(t, s.handleGetGraph, map[string]any{"name": "g", "format": "mermaid"})
	require.False(t, isErr)
	assert.Contains(t, out, "x1 -- \"0.3\" --> x0")

	out, isErr = call(t, s.handleListGraphs, nil)
	require.False(t, isErr)
	assert.JSONEq(t, `["g"]`, out)
}

func TestReadGraphsResource(t *testing.T) {
	s := NewServer(memory.NewStore())
	_, isErr := call(t, s.handleBuildGraph, map[string]any{"matrix": []any{[]any{0.0}}, "name": "single"})
	require.False(t, isErr)

	contents, err := s.readGraphs(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, graphsURI, text.URI)
	assert.JSONEq(t, `["single"]`, text.Text)
}
