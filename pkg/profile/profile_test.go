package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "YAML",
			file: "shoes.yaml",
			content: `
list_price: 900
bar_price: 600
stop_floor: 700
max_concessions: 3
step_schedule: [50, 25]
policy:
  product_title: Running shoes
`,
		},
		{
			name: "TOML",
			file: "shoes.toml",
			content: `
list_price = 900
bar_price = 600
stop_floor = 700
max_concessions = 3
step_schedule = [50, 25]

[policy]
product_title = "Running shoes"
`,
		},
		{
			name: "JSON",
			file: "shoes.json",
			content: `{
  "list_price": 900,
  "bar_price": 600,
  "stop_floor": 700,
  "max_concessions": 3,
  "step_schedule": [50, 25],
  "policy": {"product_title": "Running shoes"}
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := profile.Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, 900, cfg.ListPrice)
			assert.Equal(t, 700, cfg.Floor())
			assert.Equal(t, 3, cfg.MaxConcessions)
			assert.Equal(t, []int{50, 25}, cfg.StepSchedule)
			assert.Equal(t, "Running shoes", cfg.Policy.ProductTitle)

			// Unset fields keep their defaults.
			assert.Equal(t, 0.5, cfg.FractionTowardsUser)
			assert.Equal(t, 5, cfg.RoundBase)
			assert.Equal(t, domain.DefaultPolicy().ValueReasons, cfg.Policy.ValueReasons)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := profile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read profile")

	_, err = profile.Load(writeFile(t, "typo.yaml", "list_prise: 900\n"))
	assert.ErrorContains(t, err, "list_prise")

	_, err = profile.Load(writeFile(t, "typo.toml", "list_prise = 900\n"))
	assert.Error(t, err)

	_, err = profile.Load(writeFile(t, "typo.json", `{"list_prise": 900}`))
	assert.Error(t, err)

	_, err = profile.Load(writeFile(t, "bad.yaml", "stop_floor: 800\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestParse_EmptyYAMLIsDefault(t *testing.T) {
	cfg, err := profile.Parse(nil, profile.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestDecode(t *testing.T) {
	base := domain.DefaultConfig()

	cfg, err := profile.Decode(base, map[string]any{
		"list_price":      float64(800),
		"stop_floor":      "600",
		"max_concessions": 2,
		"accelerate":      true,
		"step_schedule":   []any{float64(30)},
		"policy": map[string]any{
			"product_title": "Desk",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.ListPrice)
	assert.Equal(t, 600, cfg.StopFloor)
	assert.Equal(t, 2, cfg.MaxConcessions)
	assert.True(t, cfg.Accelerate)
	assert.Equal(t, []int{30}, cfg.StepSchedule)
	assert.Equal(t, "Desk", cfg.Policy.ProductTitle)
	assert.Equal(t, base.Policy.NLG, cfg.Policy.NLG, "untouched nested fields survive")

	assert.Equal(t, 500, base.ListPrice, "base is not modified")
	assert.Len(t, base.StepSchedule, 5)
}

func TestDecode_Errors(t *testing.T) {
	_, err := profile.Decode(domain.DefaultConfig(), map[string]any{"list_prise": 1})
	assert.ErrorContains(t, err, "list_prise")

	_, err = profile.Decode(domain.DefaultConfig(), map[string]any{"stop_floor": 900})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Accelerate = true

	for _, format := range []profile.Format{profile.FormatYAML, profile.FormatTOML, profile.FormatJSON} {
		data, err := profile.Marshal(cfg, format)
		require.NoError(t, err, format)

		back, err := profile.Parse(data, format)
		require.NoError(t, err, format)
		assert.Equal(t, cfg, back, format)
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, profile.FormatJSON, profile.FormatOf("a.JSON"))
	assert.Equal(t, profile.FormatTOML, profile.FormatOf("a.toml"))
	assert.Equal(t, profile.FormatYAML, profile.FormatOf("a.yml"))
	assert.Equal(t, profile.FormatYAML, profile.FormatOf("profile"))
}
