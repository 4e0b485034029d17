package provider

import (
	"os"
	"strings"
)

// detectionOrder is the fixed priority list for provider auto-detection.
var detectionOrder = []string{NameAnthropic, NameOpenAI, NameGemini, NameMistral}

// New returns the adapter for an internal name.
func New(name string) (Adapter, error) {
	switch name {
	case NameAnthropic:
		return NewAnthropic(), nil
	case NameOpenAI:
		return NewOpenAI(), nil
	case NameGemini:
		return NewGemini(), nil
	case NameMistral:
		return NewMistral(), nil
	}
	return nil, UnknownProviderError(name)
}

// Names returns the internal adapter names in detection priority order.
func Names() []string {
	out := make([]string, len(detectionOrder))
	copy(out, detectionOrder)
	return out
}

// Detect inspects the recognized API key environment variables in priority
// order and returns the adapter for the first one set. With none set it
// returns a ConfigurationError naming every recognized variable.
func Detect() (Adapter, error) {
	var envVars []string
	for _, name := range detectionOrder {
		adapter, _ := New(name)
		envVars = append(envVars, adapter.APIKeyEnvVar())
		if os.Getenv(adapter.APIKeyEnvVar()) != "" {
			return adapter, nil
		}
	}
	return nil, &ConfigurationError{
		Reason: "no provider API key found; set one of: " + strings.Join(envVars, ", "),
	}
}

// APIKey reads the adapter's key from the environment, failing when unset.
func APIKey(a Adapter) (string, error) {
	key := os.Getenv(a.APIKeyEnvVar())
	if key == "" {
		return "", &ConfigurationError{
			Reason: "API key not found for provider " + a.Name() + "; set " + a.APIKeyEnvVar(),
		}
	}
	return key, nil
}
