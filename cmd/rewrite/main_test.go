package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvals-web/rewrite"
)

func TestRewriteLines(t *testing.T) {
	in := strings.NewReader("/admin/\n\n  /admin/access-rules  \n/index.html\n")
	var out bytes.Buffer

	require.NoError(t, rewriteLines(in, &out, false))
	assert.Equal(t, "/admin/\t/admin/index.html\n/admin/access-rules\t/admin/access-rules.html\n/index.html\t/index.html\n", out.String())
}

func TestRewriteLinesVerbose(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, rewriteLines(strings.NewReader("/admin/access-rules/rul_29kaLgLmxb7b8rAcy4YuE9bROTx\n"), &out, true))
	assert.Equal(t, "/admin/access-rules/rul_29kaLgLmxb7b8rAcy4YuE9bROTx\t/admin/access-rules/[id].html\textensionless\n", out.String())
}

func TestAppArgs(t *testing.T) {
	var out bytes.Buffer
	app := newApp(strings.NewReader(""), &out)

	require.NoError(t, app.Run([]string{"rewrite", "/admin/", "/admin"}))
	assert.Equal(t, "/admin/\t/admin/index.html\n/admin\t/admin.html\n", out.String())
}

func TestAppVerboseStdin(t *testing.T) {
	var out bytes.Buffer
	app := newApp(strings.NewReader("/admin/\n"), &out)

	require.NoError(t, app.Run([]string{"rewrite", "-v"}))
	assert.Equal(t, "/admin/\t/admin/index.html\tdirectory-index\n", out.String())
}

func TestAppFunction(t *testing.T) {
	var out bytes.Buffer
	app := newApp(strings.NewReader(""), &out)

	require.NoError(t, app.Run([]string{"rewrite", "function"}))
	assert.Equal(t, rewrite.FunctionSource(), out.String())
}
