package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	ClearCache()

	prompt, err := Get("agents.json", "research-job")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobPosting}}")

	_, err = Get("agents.json", "no-such-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `prompt key "no-such-key" not found`)

	_, err = Get("missing.json", "research-job")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestMustGet_PanicsOnMissingKey(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() { MustGet("agents.json", "grade-response") })
	assert.Panics(t, func() { MustGet("agents.json", "no-such-key") })
}

func TestFormat(t *testing.T) {
	template := "Role: {{.JobTitle}} at {{.Company}}. {{.JobTitle}} again."
	result := Format(template, map[string]string{
		"JobTitle": "Engineer",
		"Company":  "Acme",
	})
	assert.Equal(t, "Role: Engineer at Acme. Engineer again.", result)

	// Unknown placeholders are left intact
	assert.Equal(t, "{{.Missing}}", Format("{{.Missing}}", map[string]string{"Other": "x"}))
}

func TestAllAgentPromptsPresent(t *testing.T) {
	ClearCache()

	keys := []string{
		"research-job",
		"analyze-candidate",
		"generate-questions",
		"talking-points",
		"build-narrative",
		"grade-response",
	}
	for _, key := range keys {
		prompt, err := Get("agents.json", key)
		require.NoError(t, err, "missing prompt %s", key)
		assert.Contains(t, prompt, "Return ONLY valid JSON", "prompt %s must demand a JSON-only reply", key)
	}
}
