package architecture_test

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImportBoundaries(t *testing.T) {
	files, err := collectGoFiles(filepath.Join(repoRootDir(), "internal"))
	require.NoError(t, err)
	cliFiles, err := collectGoFiles(filepath.Join(repoRootDir(), "pkg"))
	require.NoError(t, err)
	files = append(files, cliFiles...)

	violations := make([]string, 0)
	for _, file := range files {
		if isTestFile(file) {
			continue
		}

		sourcePkg := packageImportPath(file)
		rule, ok := findRule(sourcePkg)
		if !ok {
			continue
		}

		for _, importPath := range parseImports(t, file) {
			if !strings.HasPrefix(importPath, modulePath+"/") {
				continue
			}
			if violatesRule(importPath, rule.forbidden) {
				violations = append(violations,
					"governance: "+sourcePkg+" imports "+importPath+" via "+relToRepoRoot(file)+"; allowed direction: "+rule.hint,
				)
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("%s", strings.Join(violations, "\n"))
	}
}

// Test files may import wider than production code, but never the cli.
func TestTestImportBoundaries(t *testing.T) {
	files, err := collectGoFiles(filepath.Join(repoRootDir(), "internal"))
	require.NoError(t, err)

	violations := make([]string, 0)
	for _, file := range files {
		if !isTestFile(file) {
			continue
		}
		for _, importPath := range parseImports(t, file) {
			if hasPathPrefix(importPath, modulePath+"/pkg/cli") {
				violations = append(violations, "governance: "+relToRepoRoot(file)+" imports "+importPath)
			}
		}
	}

	sort.Strings(violations)
	require.Empty(t, violations)
}

// The ODBC driver needs cgo and unixODBC, so it is only linked with -tags odbc.
func TestODBCDriverRequiresBuildTag(t *testing.T) {
	files, err := collectGoFiles(filepath.Join(repoRootDir(), "internal"))
	require.NoError(t, err)

	violations := make([]string, 0)
	for _, file := range files {
		for _, importPath := range parseImports(t, file) {
			if importPath == "github.com/alexbrainman/odbc" && !hasBuildTag(file, "odbc") {
				violations = append(violations, "governance: missing //go:build odbc in "+relToRepoRoot(file))
			}
		}
	}

	sort.Strings(violations)
	require.Empty(t, violations)
}
