package initialize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syllabyte/brainprogress/internal/manifest"
	"github.com/syllabyte/brainprogress/internal/ui"
)

func defaults(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.CreateManifestWithDefaults("", "")
	require.NoError(t, err)
	return m
}

func TestGenerateName(t *testing.T) {
	name := GenerateName()
	assert.Regexp(t, regexp.MustCompile(`^brain-[0-9a-f]{8}$`), name)
	assert.NoError(t, manifest.ValidateName(name))
	assert.NotEqual(t, name, GenerateName())
}

func TestBuildManifest(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(a *ui.InitAnswers)
		check   func(t *testing.T, m *manifest.Manifest)
		wantErr bool
	}{
		{
			name: "manual with percent",
			edit: func(a *ui.InitAnswers) { a.Percent = "40"; a.Width = "320"; a.ShowLabel = true },
			check: func(t *testing.T, m *manifest.Manifest) {
				require.NotNil(t, m.Indicator.Percent)
				assert.Equal(t, 40.0, *m.Indicator.Percent)
				assert.Equal(t, 320, m.Indicator.Width)
				assert.True(t, m.Indicator.ShowLabel)
				assert.False(t, m.Indicator.Autoplay)
			},
		},
		{
			name: "autoplay drops percent",
			edit: func(a *ui.InitAnswers) { a.Mode = "autoplay"; a.Percent = "40" },
			check: func(t *testing.T, m *manifest.Manifest) {
				assert.True(t, m.Indicator.Autoplay)
				assert.Nil(t, m.Indicator.Percent)
			},
		},
		{
			name: "custom colors",
			edit: func(a *ui.InitAnswers) { a.Primary = "#ff0000"; a.Secondary = "navy" },
			check: func(t *testing.T, m *manifest.Manifest) {
				assert.Equal(t, "#ff0000", m.Indicator.Colors.Primary)
				assert.Equal(t, "navy", m.Indicator.Colors.Secondary)
			},
		},
		{
			name:    "bad name",
			edit:    func(a *ui.InitAnswers) { a.Name = "Not Valid" },
			wantErr: true,
		},
		{
			name:    "bad width",
			edit:    func(a *ui.InitAnswers) { a.Width = "-3" },
			wantErr: true,
		},
		{
			name:    "bad percent",
			edit:    func(a *ui.InitAnswers) { a.Percent = "lots" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := defaults(t)
			a := ui.DefaultInitAnswers(d)
			a.Name = "upload"
			tt.edit(a)

			m, err := BuildManifest(d, a)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "upload", m.Name)
			tt.check(t, m)
		})
	}
}

func TestBuildManifestKeepsDefaults(t *testing.T) {
	d := defaults(t)
	a := ui.DefaultInitAnswers(d)
	a.Name = "upload"

	m, err := BuildManifest(d, a)
	require.NoError(t, err)
	assert.Empty(t, d.Name, "defaults are not modified")
	assert.Equal(t, d.Indicator.Width, m.Indicator.Width)
	assert.Equal(t, d.Indicator.Colors, m.Indicator.Colors)
}

func TestSummary(t *testing.T) {
	d := defaults(t)
	a := ui.DefaultInitAnswers(d)
	a.Name = "upload"
	a.Percent = "25"
	m, err := BuildManifest(d, a)
	require.NoError(t, err)

	s := Summary(m, Options{OutputPath: "brain.yaml"})
	assert.Contains(t, s, "Name: upload")
	assert.Contains(t, s, "manual, starting at 25%")
	assert.Contains(t, s, "brainprogress validate -f brain.yaml")

	s = Summary(m, Options{OutputPath: "brain.yaml", DryRun: true})
	assert.Contains(t, s, "DRY RUN")
}
