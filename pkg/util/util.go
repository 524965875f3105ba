package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoDurationPart = regexp.MustCompile(`(\d+)([DHMS])`)

// ParseDuration parses the ISO 8601 durations Taskwarrior exports for
// duration UDAs (PT1H30M, P1DT2H). An empty string is zero.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO 8601 duration format: %s", s)
	}

	datePart, timePart, hasTime := strings.Cut(s[1:], "T")
	if datePart != "" && !strings.HasSuffix(datePart, "D") {
		return 0, fmt.Errorf("invalid ISO 8601 duration: %s", s)
	}

	var total time.Duration
	for _, match := range isoDurationPart.FindAllStringSubmatch(datePart, -1) {
		value, _ := strconv.Atoi(match[1])
		total += time.Duration(value) * 24 * time.Hour
	}
	if hasTime {
		for _, match := range isoDurationPart.FindAllStringSubmatch(timePart, -1) {
			value, _ := strconv.Atoi(match[1])
			switch match[2] {
			case "H":
				total += time.Duration(value) * time.Hour
			case "M":
				total += time.Duration(value) * time.Minute
			case "S":
				total += time.Duration(value) * time.Second
			}
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("invalid ISO 8601 duration: %s", s)
	}
	return total, nil
}

// ParseEffort parses an Org-mode effort value: "H:MM", "MM" or a Go
// duration such as "45m".
func ParseEffort(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if h, m, ok := strings.Cut(s, ":"); ok {
		hours, err := strconv.Atoi(h)
		if err != nil {
			return 0, fmt.Errorf("invalid effort %q: %w", s, err)
		}
		mins, err := strconv.Atoi(m)
		if err != nil || mins >= 60 {
			return 0, fmt.Errorf("invalid effort %q", s)
		}
		return time.Duration(hours)*time.Hour + time.Duration(mins)*time.Minute, nil
	}
	if mins, err := strconv.Atoi(s); err == nil {
		return time.Duration(mins) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid effort %q: %w", s, err)
	}
	return d, nil
}
