// Package ui provides UI components for interactive flows
package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/manifest"
	"github.com/syllabyte/brainprogress/internal/util"
)

// InitAnswers collects the answers of the init wizard.
type InitAnswers struct {
	Name      string
	Mode      string
	Percent   string
	Width     string
	Primary   string
	Secondary string
	ShowLabel bool
	Confirmed bool
}

// DefaultInitAnswers returns the answers pre-filled from the manifest defaults.
func DefaultInitAnswers(m *manifest.Manifest) *InitAnswers {
	a := &InitAnswers{
		Name:      m.Name,
		Mode:      indicator.Manual.String(),
		Percent:   "0",
		Width:     fmt.Sprint(m.Indicator.Width),
		Primary:   m.Indicator.Colors.Primary,
		Secondary: m.Indicator.Colors.Secondary,
		Confirmed: true,
	}
	if m.Indicator.Autoplay {
		a.Mode = indicator.Autoplay.String()
	}
	return a
}

// Autoplay reports whether the autoplay mode was picked.
func (a *InitAnswers) Autoplay() bool {
	return a.Mode == indicator.Autoplay.String()
}

// CreateInputGroup creates an input group for a form
func CreateInputGroup(title, placeholder, description string, validator func(string) error, value *string) *huh.Group {
	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Description(description).
		Value(value)

	if validator != nil {
		input.Validate(validator)
	}

	return huh.NewGroup(input)
}

// CreateConfirmGroup creates a confirm group for a form
func CreateConfirmGroup(title, description, affirmative, negative string, value *bool) *huh.Group {
	return huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative(affirmative).
			Negative(negative).
			Value(value),
	)
}

// CreateSelectGroup creates a select group for a form
func CreateSelectGroup(title, description string, options []huh.Option[string], value *string) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Description(description).
			Options(options...).
			Value(value),
	)
}

// CreateNoteForm creates a note form
func CreateNoteForm(title, description string) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewNote().
			Title(title).
			Description(description),
	))
}

// NewInitForm builds the init wizard writing into a. The percent step is
// skipped for autoplay indicators.
func NewInitForm(a *InitAnswers) *huh.Form {
	modes := []huh.Option[string]{
		huh.NewOption("Manual (progress set by the caller)", indicator.Manual.String()),
		huh.NewOption("Autoplay (fills and drains on its own)", indicator.Autoplay.String()),
	}

	percent := CreateInputGroup("Initial progress", "0", "Percent shown before the first update (0-100).",
		manifest.ValidatePercent, &a.Percent).
		WithHideFunc(a.Autoplay)

	return huh.NewForm(
		CreateInputGroup("Indicator name", "upload", "Used as the key for saved progress.", manifest.ValidateName, &a.Name),
		CreateSelectGroup("Mode", "Who drives the progress value?", modes, &a.Mode),
		percent,
		CreateInputGroup("Width", "200", "Rendered width in pixels.", func(s string) error {
			return util.ValidatePositiveInteger(s, "width")
		}, &a.Width),
		huh.NewGroup(
			huh.NewInput().Title("Primary color").Value(&a.Primary).Validate(manifest.ValidateColor),
			huh.NewInput().Title("Secondary color").Value(&a.Secondary).Validate(manifest.ValidateColor),
			huh.NewConfirm().Title("Show the percentage label?").Value(&a.ShowLabel),
		),
		CreateConfirmGroup("Write manifest?", "", "Yes", "No", &a.Confirmed),
	)
}

// CollectWithForm is a generic form collection helper to reduce code duplication
func CollectWithForm(form *huh.Form, errorMsg string) error {
	if err := form.Run(); err != nil {
		return fmt.Errorf("%s: %w", errorMsg, err)
	}
	return nil
}
