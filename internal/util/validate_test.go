package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePositiveInteger(t *testing.T) {
	tests := []struct {
		value   string
		wantErr string
	}{
		{"200", ""},
		{"1", ""},
		{"", "cannot be empty"},
		{"abc", "must be a positive integer"},
		{"0", "must be a positive integer"},
		{"-5", "must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidatePositiveInteger(tt.value, "width")
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNonEmpty(t *testing.T) {
	assert.NoError(t, ValidateNonEmpty("upload", "name"))
	assert.Error(t, ValidateNonEmpty("   ", "name"))
}

func TestValidateValueMax(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		max     string
		wantErr string
	}{
		{"valid", "3", "4", ""},
		{"value above max", "5", "4", ""},
		{"bad value", "x", "4", "value 'x' is invalid"},
		{"bad max", "3", "y", "max 'y' is invalid"},
		{"zero max", "3", "0", "greater than 0"},
		{"negative value", "-1", "4", "cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateValueMax(tt.value, tt.max)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePercentRange(t *testing.T) {
	assert.NoError(t, ValidatePercentRange(0, 100))
	assert.ErrorContains(t, ValidatePercentRange(-1, 50), "start percent")
	assert.ErrorContains(t, ValidatePercentRange(10, 101), "target percent")
}
