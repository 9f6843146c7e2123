package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoObject = errors.New("no JSON object found")

// ParseJSON decodes the outermost {...} of data into T. Text around the
// object, such as markdown fences left by a labeling model, is ignored.
func ParseJSON[T any](data string) (T, error) {
	var result T

	start := strings.IndexByte(data, '{')
	end := strings.LastIndexByte(data, '}')
	if start < 0 || end < start {
		return result, ErrNoObject
	}

	if err := json.Unmarshal([]byte(data[start:end+1]), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
