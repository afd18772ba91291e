package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("SCOUT_TEST_DIR", "/var/data")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "absolute path unchanged", input: "/tmp/scout.db", expected: "/tmp/scout.db"},
		{name: "bare tilde", input: "~", expected: home},
		{name: "tilde prefix", input: "~/data/scout.db", expected: filepath.Join(home, "data/scout.db")},
		{name: "env variable", input: "$SCOUT_TEST_DIR/scout.db", expected: "/var/data/scout.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}
