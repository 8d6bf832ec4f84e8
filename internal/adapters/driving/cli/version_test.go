package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	originalVersion := version
	SetVersion("1.2.0")
	defer func() { version = originalVersion }()

	out, err := execute([]string{"version"}, "")

	assert.NoError(t, err)
	assert.Contains(t, out, "lecturelens version 1.2.0")
}

func TestVersionCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute([]string{"version", "--json"}, "")

	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, version, decoded["version"])
	assert.NotEmpty(t, decoded["go"])
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()

	version = "dev"
	SetVersion("")

	assert.Equal(t, "dev", version)
}
