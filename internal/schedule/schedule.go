// Package schedule validates AWS Backup schedule expressions.
//
// AWS Backup accepts the CloudWatch Events forms:
//
//	cron(minutes hours day-of-month month day-of-week year)
//	rate(value unit)
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	cronRe = regexp.MustCompile(`^cron\(([^)]*)\)$`)
	rateRe = regexp.MustCompile(`^rate\(\s*(\d+)\s+(minute|minutes|hour|hours|day|days)\s*\)$`)

	// cron fields allow digits, ranges, steps, lists, wildcards, and the
	// day-of-week / day-of-month special characters.
	cronFieldRe = regexp.MustCompile(`^[0-9A-Za-z*?,/\-#LW]+$`)
)

// Validate checks that expr is a well-formed cron() or rate() expression.
func Validate(expr string) error {
	switch {
	case strings.HasPrefix(expr, "cron("):
		return validateCron(expr)
	case strings.HasPrefix(expr, "rate("):
		return validateRate(expr)
	default:
		return fmt.Errorf("schedule %q must be a cron() or rate() expression", expr)
	}
}

func validateCron(expr string) error {
	m := cronRe.FindStringSubmatch(expr)
	if m == nil {
		return fmt.Errorf("malformed cron expression %q", expr)
	}

	fields := strings.Fields(m[1])
	if len(fields) != 6 {
		return fmt.Errorf("cron expression %q has %d fields, want 6 (minutes hours day-of-month month day-of-week year)", expr, len(fields))
	}

	for i, f := range fields {
		if !cronFieldRe.MatchString(f) {
			return fmt.Errorf("cron expression %q: invalid field %d %q", expr, i+1, f)
		}
	}

	// AWS rejects specifying both day-of-month and day-of-week.
	if fields[2] != "?" && fields[4] != "?" {
		return fmt.Errorf("cron expression %q: one of day-of-month and day-of-week must be ?", expr)
	}

	return nil
}

func validateRate(expr string) error {
	m := rateRe.FindStringSubmatch(expr)
	if m == nil {
		return fmt.Errorf("malformed rate expression %q (want rate(<value> <unit>))", expr)
	}

	value, err := strconv.Atoi(m[1])
	if err != nil || value < 1 {
		return fmt.Errorf("rate expression %q: value must be a positive integer", expr)
	}

	// Singular units require value 1, plural units require value > 1.
	plural := strings.HasSuffix(m[2], "s")
	if value == 1 && plural {
		return fmt.Errorf("rate expression %q: use singular unit with value 1", expr)
	}
	if value > 1 && !plural {
		return fmt.Errorf("rate expression %q: use plural unit with value %d", expr, value)
	}

	return nil
}
