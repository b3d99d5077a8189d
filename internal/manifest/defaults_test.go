package manifest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/syllabyte/brainprogress/internal/manifest/schema"
)

type DefaultsTestSuite struct {
	suite.Suite
}

func (s *DefaultsTestSuite) SetupTest() {
	ClearSchemaCache()
}

func (s *DefaultsTestSuite) TestGetDefaultValues() {
	defaults, err := GetDefaultValues("v1-alpha.1", schema.SchemaTypeIndicator)
	s.Require().NoError(err)

	s.Equal(200.0, defaults["indicator.width"])
	s.Equal(1.0, defaults["indicator.animationSpeed"])
	s.Equal(false, defaults["indicator.showLabel"])
	s.Equal("#06c9a1", defaults["indicator.colors.primary"])
	s.Equal("300ms", defaults["indicator.cycle.pauseAtTrough"])
	s.Equal("pause-start", defaults["indicator.cycle.flip"])
	s.NotContains(defaults, "indicator.percent")
	s.NotContains(defaults, "apiVersion")
}

func (s *DefaultsTestSuite) TestUnknownVersion() {
	_, err := GetDefaultValues("v0", schema.SchemaTypeIndicator)
	s.ErrorContains(err, "schema not found")
}

func (s *DefaultsTestSuite) TestTree() {
	tree := DefaultValues{
		"a.b.c": 1,
		"a.b.d": 2,
		"a.e":   3,
		"f":     4,
	}.Tree()
	s.Equal(map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1, "d": 2},
			"e": 3,
		},
		"f": 4,
	}, tree)
}

func (s *DefaultsTestSuite) TestWithDefaultsKeepsUserValues() {
	obj := map[string]any{
		"apiVersion": "v1-alpha.1",
		"indicator": map[string]any{
			"width":  50.0,
			"colors": map[string]any{"secondary": "red"},
			"cycle":  map[string]any{"pauseAtTrough": 0.0},
		},
	}
	merged, err := WithDefaults(obj, "v1-alpha.1")
	s.Require().NoError(err)

	ind := merged["indicator"].(map[string]any)
	s.Equal(50.0, ind["width"])
	s.Equal(200.0, ind["height"])

	colors := ind["colors"].(map[string]any)
	s.Equal("#06c9a1", colors["primary"])
	s.Equal("red", colors["secondary"])

	cyc := ind["cycle"].(map[string]any)
	s.Equal(0.0, cyc["pauseAtTrough"], "zero values from the document win over defaults")
	s.Equal("1s", cyc["pauseAtPeak"])
}

func (s *DefaultsTestSuite) TestWithDefaultsArguments() {
	_, err := WithDefaults(nil, "v1-alpha.1")
	s.ErrorContains(err, "cannot be nil")
	_, err = WithDefaults(map[string]any{}, "")
	s.ErrorContains(err, "version cannot be empty")
}

func (s *DefaultsTestSuite) TestCreateManifestWithDefaults() {
	m, err := CreateManifestWithDefaults("build", "")
	s.Require().NoError(err)
	s.Equal("v1-alpha.1", m.APIVersion)
	s.Equal("build", m.Name)
	s.Equal(200, m.Indicator.Width)
	s.Equal(Duration(time.Second), m.Indicator.Cycle.PauseAtPeak)
	s.Equal(Duration(300*time.Millisecond), m.Indicator.Cycle.PauseAtTrough)
	s.Nil(m.Indicator.Percent)
}

func TestDefaultsTestSuite(t *testing.T) {
	suite.Run(t, new(DefaultsTestSuite))
}

func TestToDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected time.Duration
		wantErr  bool
	}{
		{name: "string", input: "1.5s", expected: 1500 * time.Millisecond},
		{name: "milliseconds", input: 250.0, expected: 250 * time.Millisecond},
		{name: "integer milliseconds", input: 40, expected: 40 * time.Millisecond},
		{name: "nil", input: nil, expected: 0},
		{name: "garbage", input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := toDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestDurationJSON(t *testing.T) {
	data, err := Duration(300 * time.Millisecond).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"300ms"`, string(data))

	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"2s"`)))
	assert.Equal(t, Duration(2*time.Second), d)
	require.NoError(t, d.UnmarshalJSON([]byte(`120`)))
	assert.Equal(t, Duration(120*time.Millisecond), d)
}
