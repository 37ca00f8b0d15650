package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vtcland/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultScriptIsValid(t *testing.T) {
	s := DefaultScript()
	require.NoError(t, ValidateScript(s))

	steps := []models.Step{
		models.StepWelcome, models.StepName, models.StepTier, models.StepPickup, models.StepHours,
		models.StepDestination, models.StepPassengers, models.StepLuggage, models.StepBags, models.StepDate,
		models.StepTime, models.StepPayment, models.StepPhone, models.StepCode, models.StepConfirm,
		models.StepRestart, models.StepCompleted, models.StepEnded,
	}
	for _, st := range steps {
		assert.NotEmpty(t, s.Prompt(st), "prompt for %s", st)
	}
	assert.Contains(t, s.PromptWith(models.StepCompleted, map[string]string{"number": "VTC-1"}), "VTC-1")
	assert.Equal(t, 80.0, mustTier(t, s, models.TierHourly).HourlyRate)
}

func mustTier(t *testing.T, s *models.Script, id models.ServiceTier) models.TierOption {
	t.Helper()
	tier, ok := s.Tier(id)
	require.True(t, ok)
	return tier
}

func TestLoadScript_NoPathReturnsDefault(t *testing.T) {
	s, err := LoadScript("")
	require.NoError(t, err)
	assert.Equal(t, DefaultScript(), s)
}

func TestLoadScript_OverlaysFile(t *testing.T) {
	path := writeScript(t, `
currency: EUR
redirect_delay: 3s
messages:
  code_mismatch: "Mauvais code."
payments:
  - value: Card
    label: Carte
`)
	s, err := LoadScript(path)
	require.NoError(t, err)

	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, 3*time.Second, s.RedirectDelay)
	assert.Equal(t, "Mauvais code.", s.Message("code_mismatch", nil))
	assert.Equal(t, DefaultScript().Messages["verified"], s.Message("verified", nil), "unset keys keep the default")
	require.Len(t, s.Payments, 1, "lists replace the default")
	assert.Equal(t, "Carte", s.PaymentLabel(models.PaymentCard))
	assert.Len(t, s.Tiers, 3)
}

func TestLoadScript_HourlyRate(t *testing.T) {
	path := writeScript(t, `
tiers:
  - id: Hourly
    label: Mise à disposition
    kind: hourly
    hourly_rate: 95
`)
	s, err := LoadScript(path)
	require.NoError(t, err)
	require.Len(t, s.Tiers, 1)
	assert.Equal(t, 95.0, s.Tiers[0].HourlyRate)
}

func TestLoadScript_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown kind":  "tiers:\n  - id: X\n    kind: boat\n",
		"no rate":       "tiers:\n  - id: X\n    kind: direct\n",
		"empty prefix":  "reservation_prefix: \"\"\n",
		"no yes tokens": "yes_tokens: []\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScript(writeScript(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
