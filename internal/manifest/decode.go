package manifest

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

var durationType = reflect.TypeOf(Duration(0))

// toDuration converts a Go duration string or a number of milliseconds.
func toDuration(v any) (time.Duration, error) {
	switch v := v.(type) {
	case string:
		d, err := cast.ToDurationE(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		return d, nil
	case nil:
		return 0, nil
	default:
		ms, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %v: %w", v, err)
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
}

// durationHook decodes manifest durations from strings or milliseconds.
func durationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		d, err := toDuration(data)
		if err != nil {
			return nil, err
		}
		return Duration(d), nil
	}
}

// decode converts a validated document into a Manifest.
func decode(obj map[string]any) (*Manifest, error) {
	var m Manifest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       durationHook(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(obj); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
