package schedule

import "testing"

func TestValidate_Cron(t *testing.T) {
	valid := []string{
		"cron(0 5 * * ? *)",
		"cron(0 5 ? * MON-FRI *)",
		"cron(15 12 * * ? 2026)",
		"cron(0/30 * * * ? *)",
		"cron(0 2 L * ? *)",
	}
	for _, expr := range valid {
		if err := Validate(expr); err != nil {
			t.Errorf("Validate(%q) error = %v", expr, err)
		}
	}
}

func TestValidate_CronInvalid(t *testing.T) {
	invalid := []string{
		"cron(0 5 * * *)",          // 5 fields
		"cron(0 5 * * ? * extra)",  // 7 fields
		"cron(0 5 1 * MON *)",      // both day fields set
		"cron(0 5 * * ! *)",        // bad character
		"cron 0 5 * * ? *",         // missing parens
		"@daily",                   // unix cron shorthand
		"0 5 * * ? *",              // bare fields
	}
	for _, expr := range invalid {
		if err := Validate(expr); err == nil {
			t.Errorf("Validate(%q) expected error", expr)
		}
	}
}

func TestValidate_Rate(t *testing.T) {
	valid := []string{
		"rate(1 hour)",
		"rate(12 hours)",
		"rate(1 day)",
		"rate(30 minutes)",
	}
	for _, expr := range valid {
		if err := Validate(expr); err != nil {
			t.Errorf("Validate(%q) error = %v", expr, err)
		}
	}

	invalid := []string{
		"rate(0 hours)",
		"rate(1 hours)",
		"rate(2 hour)",
		"rate(1 week)",
		"rate(hourly)",
	}
	for _, expr := range invalid {
		if err := Validate(expr); err == nil {
			t.Errorf("Validate(%q) expected error", expr)
		}
	}
}
