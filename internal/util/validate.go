package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ValidatePositiveInteger ensures a string is a positive integer
func ValidatePositiveInteger(value string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	val, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s '%s' is invalid: must be a positive integer", fieldName, value)
	}
	if val < 1 {
		return fmt.Errorf("%s %d is invalid: must be a positive integer", fieldName, val)
	}
	return nil
}

// ValidateNonEmpty ensures a string is not empty or whitespace-only
func ValidateNonEmpty(value string, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty or contain only whitespace", fieldName)
	}
	return nil
}

// ValidateValueMax ensures value and max are numbers and max is positive.
func ValidateValueMax(valueStr, maxStr string) error {
	value, err := cast.ToFloat64E(valueStr)
	if err != nil {
		return fmt.Errorf("value '%s' is invalid: must be a number", valueStr)
	}
	max, err := cast.ToFloat64E(maxStr)
	if err != nil {
		return fmt.Errorf("max '%s' is invalid: must be a number", maxStr)
	}
	if max <= 0 {
		return fmt.Errorf("max must be greater than 0")
	}
	if value < 0 {
		return fmt.Errorf("value (%g) cannot be negative", value)
	}
	return nil
}

// ValidatePercentRange ensures 0 <= from, to <= 100.
func ValidatePercentRange(from, to float64) error {
	if from < 0 || from > 100 {
		return fmt.Errorf("start percent %g is invalid: must be between 0 and 100", from)
	}
	if to < 0 || to > 100 {
		return fmt.Errorf("target percent %g is invalid: must be between 0 and 100", to)
	}
	return nil
}
