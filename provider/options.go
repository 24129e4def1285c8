package provider

import (
	"maps"
	"strconv"
)

// Option keys understood by every adapter.
const (
	OptModel              = "model"
	OptSystem             = "system"
	OptMaxTokens          = "max_tokens"
	OptMinAvailableTokens = "min_available_tokens"
	OptTemperature        = "temperature"
	OptTopP               = "top_p"
	OptTopK               = "top_k"
	OptStop               = "stop"
)

// Options holds vendor options as stored in a session file. Values come
// from YAML, TOML, JSON or flags, so the getters accept every numeric type
// those decoders produce.
type Options map[string]any

// Get retrieves an option by key.
func (o Options) Get(key string) any {
	if o == nil {
		return nil
	}
	return o[key]
}

// GetString retrieves a string option, returning defaultVal if not set.
func (o Options) GetString(key, defaultVal string) string {
	if v, ok := o.Get(key).(string); ok {
		return v
	}
	return defaultVal
}

// GetBool retrieves a bool option, returning defaultVal if not set.
func (o Options) GetBool(key string, defaultVal bool) bool {
	if v, ok := o.Get(key).(bool); ok {
		return v
	}
	return defaultVal
}

// GetInt retrieves an int option, returning defaultVal if not set.
func (o Options) GetInt(key string, defaultVal int) int {
	switch v := o.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// GetFloat retrieves a float option. ok is false if not set.
func (o Options) GetFloat(key string) (v float64, ok bool) {
	switch x := o.Get(key).(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// GetStringSlice retrieves a string slice option, returning nil if not set.
// Handles both []string and []any (from YAML or JSON unmarshaling).
func (o Options) GetStringSlice(key string) []string {
	switch v := o.Get(key).(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	case string:
		return []string{v}
	}
	return nil
}

// With returns a copy of the options with key set.
func (o Options) With(key string, value any) Options {
	out := make(Options, len(o)+1)
	maps.Copy(out, o)
	out[key] = value
	return out
}

// Params converts the options into typed request settings.
func (o Options) Params() Params {
	p := Params{
		Model:     o.GetString(OptModel, ""),
		System:    o.GetString(OptSystem, ""),
		MaxTokens: o.GetInt(OptMaxTokens, 0),
		Stop:      o.GetStringSlice(OptStop),
	}
	if v, ok := o.GetFloat(OptTemperature); ok {
		p.Temperature = &v
	}
	if v, ok := o.GetFloat(OptTopP); ok {
		p.TopP = &v
	}
	if _, ok := o[OptTopK]; ok {
		k := o.GetInt(OptTopK, 0)
		p.TopK = &k
	}
	return p
}
