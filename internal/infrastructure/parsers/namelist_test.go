package parsers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFundSource_FundNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funds.txt")
	content := `# top hedge funds
Renaissance Technologies

Bridgewater
  Citadel
Renaissance Technologies
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	source := &FileFundSource{Path: path}
	names, err := source.FundNames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bridgewater", "Citadel", "Renaissance Technologies"}, names)
}

func TestFileFundSource_FundNames_MissingFile(t *testing.T) {
	source := &FileFundSource{Path: filepath.Join(t.TempDir(), "nope.txt")}
	_, err := source.FundNames(context.Background())
	assert.Error(t, err)
}
