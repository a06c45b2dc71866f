package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldError is one validation failure, in required-field order.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateFields evaluates each required field against the current
// values: presence first, then the field's format rule if it has one.
// Validation never mutates the fields; a missing date counts as present
// because the current date is substituted at persist time.
func ValidateFields(fields map[string]interface{}, required []string) []FieldError {
	var errs []FieldError

	for _, field := range required {
		value, ok := fields[field]

		if field == FieldDate && (!ok || isBlank(value)) {
			continue // defaulted to today on persist, not recorded here
		}

		if !ok || value == nil || isBlank(value) {
			errs = append(errs, FieldError{Field: field, Message: "is required"})
			continue
		}

		if msg := checkFormat(field, value); msg != "" {
			errs = append(errs, FieldError{Field: field, Message: msg})
		}
	}

	return errs
}

func isBlank(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	case map[string]string:
		return len(v) == 0
	case *float64:
		return v == nil
	default:
		return false
	}
}

func checkFormat(field string, value interface{}) string {
	switch field {
	case FieldLatitude, FieldLocationLatitude:
		lat, ok := toFloat(value)
		if !ok {
			return "must be a number"
		}
		if lat < -90 || lat > 90 {
			return "must be between -90 and 90"
		}
	case FieldLongitude, FieldLocationLongitude:
		lon, ok := toFloat(value)
		if !ok {
			return "must be a number"
		}
		if lon < -180 || lon > 180 {
			return "must be between -180 and 180"
		}
	case FieldComplaintNo:
		if len(strings.TrimSpace(asString(value))) < 3 {
			return "must be at least 3 characters"
		}
	case FieldTechMobile:
		if !IsTenDigitPhone(asString(value)) {
			return "must contain exactly 10 digits"
		}
	case FieldJbTemperature:
		if _, ok := toFloat(value); !ok {
			return "must be a number"
		}
	}
	return ""
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsTenDigitPhone strips non-digits and requires exactly ten remaining.
func IsTenDigitPhone(s string) bool {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits == 10
}

// todayString is the date substituted when the date field is left empty.
func todayString(now time.Time) string {
	return now.Format("2006-01-02")
}

// FormatErrors renders a validation error list for user display.
func FormatErrors(errs []FieldError) string {
	if len(errs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}
