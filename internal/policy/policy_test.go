package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devsync/internal/record"
)

func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoad_Valid(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"policy.cue": `
admin: "ops"
policy: {
	course_progress: "merge_data"
	settings:        "last_write_wins"
}
`,
	})

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "ops", cfg.Admin)

	p, ok := cfg.For("course_progress")
	require.True(t, ok)
	assert.Equal(t, record.PolicyMergeData, p)

	p, ok = cfg.For("settings")
	require.True(t, ok)
	assert.Equal(t, record.PolicyLastWriteWins, p)

	_, ok = cfg.For("bookmarks")
	assert.False(t, ok)
}

func TestLoad_AdminOptional(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"policy.cue": `
policy: {
	settings: "first_write_wins"
}
`,
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Admin)
}

func TestLoad_UnknownPolicy(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"policy.cue": `
policy: {
	settings: "coin_flip"
}
`,
	})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown policy")
}

func TestLoad_NonStringPolicy(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"policy.cue": `
policy: {
	settings: 42
}
`,
	})

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_NoCUEFiles(t *testing.T) {
	dir := writeConfig(t, map[string]string{"readme.txt": "not cue"})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files")
}

func TestLoad_MergesMultipleFiles(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"admin.cue": `admin: "ops"` + "\n",
		"policy.cue": `
policy: {
	settings: "manual_review"
}
`,
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.Admin)

	p, ok := cfg.For("settings")
	require.True(t, ok)
	assert.Equal(t, record.PolicyManualReview, p)
}

func TestLoadError_Format(t *testing.T) {
	err := &LoadError{Path: "policy.settings", Message: "must be a string"}
	assert.Equal(t, "policy config: policy.settings: must be a string", err.Error())

	err = &LoadError{Message: "no CUE files found"}
	assert.Equal(t, "policy config: no CUE files found", err.Error())
}
