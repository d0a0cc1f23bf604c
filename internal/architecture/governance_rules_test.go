package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const modulePath = "lake-crud"

type layerRule struct {
	sourcePrefix string
	forbidden    []string
	hint         string
}

// architectureRules lists, per package, the module packages it must not
// import. Dependencies point from cli through app towards domain.
var architectureRules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden: []string{
			modulePath + "/internal/config",
			modulePath + "/internal/ddl",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/internal/lake",
			modulePath + "/internal/app",
			modulePath + "/pkg/cli",
		},
		hint: "domain may only import domain",
	},
	{
		sourcePrefix: modulePath + "/internal/config",
		forbidden: []string{
			modulePath + "/internal/domain",
			modulePath + "/internal/ddl",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/internal/lake",
			modulePath + "/internal/app",
			modulePath + "/pkg/cli",
		},
		hint: "config is a leaf package",
	},
	{
		sourcePrefix: modulePath + "/internal/ddl",
		forbidden: []string{
			modulePath + "/internal/config",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/internal/lake",
			modulePath + "/internal/app",
			modulePath + "/pkg/cli",
		},
		hint: "ddl builds statements from domain values only",
	},
	{
		sourcePrefix: modulePath + "/internal/engine",
		forbidden: []string{
			modulePath + "/internal/service",
			modulePath + "/internal/lake",
			modulePath + "/internal/app",
			modulePath + "/pkg/cli",
		},
		hint: "engine should depend on config, ddl and domain",
	},
	{
		sourcePrefix: modulePath + "/internal/service",
		forbidden: []string{
			modulePath + "/internal/config",
			modulePath + "/internal/lake",
			modulePath + "/internal/app",
			modulePath + "/pkg/cli",
		},
		hint: "service receives resolved values, not settings",
	},
	{
		sourcePrefix: modulePath + "/internal/lake",
		forbidden: []string{
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/internal/app",
			modulePath + "/pkg/cli",
		},
		hint: "lake should depend on config only",
	},
	{
		sourcePrefix: modulePath + "/internal/app",
		forbidden: []string{
			modulePath + "/pkg/cli",
		},
		hint: "app is wired by the cli, never the other way",
	},
}

func collectGoFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func repoRootDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func findRule(sourcePkg string) (layerRule, bool) {
	for _, rule := range architectureRules {
		if hasPathPrefix(sourcePkg, rule.sourcePrefix) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func violatesRule(importPath string, forbidden []string) bool {
	for _, prefix := range forbidden {
		if hasPathPrefix(importPath, prefix) {
			return true
		}
	}
	return false
}

func hasPathPrefix(value string, prefix string) bool {
	return value == prefix || strings.HasPrefix(value, prefix+"/")
}

func packageImportPath(file string) string {
	return modulePath + "/" + filepath.ToSlash(filepath.Dir(relToRepoRoot(file)))
}

func isTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

func parseImports(t *testing.T, file string) []string {
	t.Helper()

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
	require.NoErrorf(t, err, "parse imports for %s", file)

	imports := make([]string, 0, len(parsed.Imports))
	for _, imp := range parsed.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, "\""))
	}
	return imports
}

func relToRepoRoot(path string) string {
	rel, err := filepath.Rel(repoRootDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func hasBuildTag(filePath, tag string) bool {
	content, err := os.ReadFile(filePath) //nolint:gosec // repo file
	if err != nil {
		return false
	}
	return strings.Contains(string(content), "//go:build "+tag)
}
