// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package util

import (
	"fmt"
	"strings"
)

// MaskSensitiveValue masks a sensitive string value for safe logging.
// It preserves some characters from the beginning and end of the string
// to aid in identification, while masking the middle part.
// For very short strings (less than 6 chars), it simply returns "[REDACTED]".
func MaskSensitiveValue(value string) string {
	if value == "" {
		return ""
	}

	// For very short strings, just return [REDACTED]
	if len(value) < 6 {
		return "[REDACTED]"
	}

	visiblePrefix := 2
	visibleSuffix := 2

	// For longer strings, show a bit more
	if len(value) > 12 {
		visiblePrefix = 3
		visibleSuffix = 3
	}

	// Ensure we don't show more than half the string
	if visiblePrefix+visibleSuffix > len(value)/2 {
		visiblePrefix = 2
		visibleSuffix = 2
	}

	prefix := value[:visiblePrefix]
	suffix := value[len(value)-visibleSuffix:]
	masked := strings.Repeat("*", len(value)-visiblePrefix-visibleSuffix)

	return fmt.Sprintf("%s%s%s", prefix, masked, suffix)
}
