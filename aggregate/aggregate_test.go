package aggregate

import (
	"context"
	"go/ast"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godoctor/flowgraph/loader"
)

func funcDecl(name string) *ast.FuncDecl {
	return &ast.FuncDecl{Name: &ast.Ident{Name: name}}
}

func writeModule(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/sample\n\ngo 1.23\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(src), 0o644))
	return dir
}

func TestBuildProducesOneCFGPerFunction(t *testing.T) {
	dir := writeModule(t, `package main

func A() {}

func B() { x := 1; _ = x }
`)
	prog, err := loader.Load(dir)
	require.NoError(t, err)

	proj, err := Build(context.Background(), prog)
	require.NoError(t, err)

	require.Len(t, proj.Entries, 2)
	assert.Contains(t, proj.ByName, "A")
	assert.Contains(t, proj.ByName, "B")
}

func TestBuildDisambiguatesMethodsByReceiver(t *testing.T) {
	dir := writeModule(t, `package main

type Server struct{}
type Client struct{}

func (s *Server) Close() {}
func (c *Client) Close() {}
`)
	prog, err := loader.Load(dir)
	require.NoError(t, err)

	proj, err := Build(context.Background(), prog)
	require.NoError(t, err)

	require.Len(t, proj.Entries, 2)
	assert.Contains(t, proj.ByName, "Server.Close")
	assert.Contains(t, proj.ByName, "Client.Close")
}

func TestBuildDisambiguatesDuplicateBareNamesDeterministically(t *testing.T) {
	decls := []loader.FuncDecl{
		{Decl: funcDecl("dup")},
		{Decl: funcDecl("dup")},
		{Decl: funcDecl("dup")},
	}
	names := disambiguate(decls)
	assert.Equal(t, []string{"dup", "dup#1", "dup#2"}, names)
}
