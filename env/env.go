package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
)

// GetEnv gets a string value from the environment.
// Fallback names are tried in order when varName is unset
func GetEnv(name string, varName string, fallbackVarNames ...string) (string, error) {
	for _, candidate := range append([]string{varName}, fallbackVarNames...) {
		if value, exists := os.LookupEnv(candidate); exists {
			return value, nil
		}
	}

	return "", fmt.Errorf("no environment variable found for the %s ('%s')", name, varName)
}

// GetEnvOrDefault gets a string value from the environment,
// falling back to the given default when it is unset or blank
func GetEnvOrDefault(varName string, defaultValue string) string {
	value, exists := os.LookupEnv(varName)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	return strings.TrimSpace(value)
}

// GetIntEnv gets an integer value from the environment and parses it
func GetIntEnv(name string, varName string) (int, error) {
	value, err := GetEnv(name, varName)
	if err != nil {
		return 0, err
	}

	return parseInt(name, varName, value)
}

// GetIntEnvOrDefault is GetIntEnv with a default for unset variables.
// A set but unparsable value is still an error
func GetIntEnvOrDefault(name string, varName string, defaultValue int) (int, error) {
	value := GetEnvOrDefault(varName, "")
	if value == "" {
		return defaultValue, nil
	}

	return parseInt(name, varName, value)
}

func parseInt(name string, varName string, value string) (int, error) {
	asInt, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("environment variable value '%s' invalid for the %s ('%s'): %w",
			value, name, varName, err)
	}

	return asInt, nil
}

// GetDurationEnv gets a duration value from the environment and parses it,
// using the default if the variable is unset
func GetDurationEnv(name string, varName string, defaultValue time.Duration) (time.Duration, error) {
	value := GetEnvOrDefault(varName, "")
	if value == "" {
		return defaultValue, nil
	}

	asDuration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("environment variable value '%s' invalid for the %s ('%s'): %w",
			value, name, varName, err)
	}

	return asDuration, nil
}

// GetBytesEnv gets a byte size value (such as "8MB") from the environment and parses it,
// using the default if the variable is unset
func GetBytesEnv(name string, varName string, defaultValue datasize.ByteSize) (datasize.ByteSize, error) {
	value := GetEnvOrDefault(varName, "")
	if value == "" {
		return defaultValue, nil
	}

	var size datasize.ByteSize
	err := size.UnmarshalText([]byte(value))
	if err != nil {
		return 0, fmt.Errorf("environment variable value '%s' invalid for the %s ('%s'): %w",
			value, name, varName, err)
	}

	return size, nil
}

// GetListEnv gets a pipe-separated list from the environment,
// such as "http://a.example|http://b.example".
// Returns the default if the variable is unset or contains no entries
func GetListEnv(varName string, defaultValue []string) []string {
	value := GetEnvOrDefault(varName, "")
	if value == "" {
		return defaultValue
	}

	entries := []string{}
	for _, entry := range strings.Split(value, "|") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		return defaultValue
	}

	return entries
}
