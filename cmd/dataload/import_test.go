package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCmd(t *testing.T) {
	cmd := newValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{filepath.Join("..", "..", "internal", "dataload", "testdata", "export.json")})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "ok: 4 users, 3 posts\n", out.String())
}

func TestValidateCmd_UnknownUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  u1: {name: Ann, image: u1/ProfilePicture.jpg}
posts:
  p1:
    date: "Jan 02, 2020"
    user: ghost
    text: hi
`), 0o644))

	cmd := newValidateCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestImportCmd_RequiresScraper(t *testing.T) {
	cmd := newImportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scraper-name")
}
