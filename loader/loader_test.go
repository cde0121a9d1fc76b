package loader

import (
	"go/ast"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestLoadResolvesModulePath(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/sample\n\ngo 1.23\n",
		"main.go": `package main

func A() {}

func B() int { return 1 }
`,
	})

	prog, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "example.com/sample", prog.ModulePath)
	require.NotEmpty(t, prog.Files)
}

func TestFunctionsWalksInSourceOrder(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/sample\n\ngo 1.23\n",
		"main.go": `package main

func First() {}

func Second() {}
`,
	})

	prog, err := Load(dir)
	require.NoError(t, err)

	funcs := prog.Functions()
	require.Len(t, funcs, 2)
	assert.Equal(t, "First", funcs[0].Decl.Name.Name)
	assert.Equal(t, "Second", funcs[1].Decl.Name.Name)
}

func TestPosResolverReturnsSourceLines(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/sample\n\ngo 1.23\n",
		"main.go": `package main

func A() {
	x := 1
	_ = x
}
`,
	})

	prog, err := Load(dir)
	require.NoError(t, err)
	require.NotEmpty(t, prog.Files)

	resolve := prog.PosResolver()
	var fn *ast.FuncDecl
	for _, f := range prog.Functions() {
		fn = f.Decl
	}
	require.NotNil(t, fn)

	start, end := resolve(fn)
	assert.LessOrEqual(t, start, end)
}

func TestModulePathWithoutGoModIsEmpty(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", modulePath(dir))
}
