package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vtcland/models"
)

// Field names the rule applied to a raw answer.
type Field string

const (
	FieldWelcome    Field = "welcome"
	FieldText       Field = "text"
	FieldTier       Field = "tier"
	FieldHours      Field = "hours"
	FieldPassengers Field = "passengers"
	FieldYesNo      Field = "yesno"
	FieldBags       Field = "bags"
	FieldDate       Field = "date"
	FieldTime       Field = "time"
	FieldPayment    Field = "payment"
	FieldPhone      Field = "phone"
	FieldCode       Field = "code"
)

// Normalized yes/no answers.
const (
	Yes = "yes"
	No  = "no"
)

const DateLayout = "2006-01-02"
const TimeLayout = "15:04"

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	codePattern  = regexp.MustCompile(`^[0-9]{4,8}$`)
	phoneNoise   = strings.NewReplacer(" ", "", ".", "", "-", "", "(", "", ")", "")
	markup       = strings.NewReplacer("<", "", ">", "")

	dateLayouts = []string{DateLayout, "02/01/2006", "2/1/2006"}
	timeLayouts = []string{TimeLayout, "15h04", "15h", "15.04"}
)

// ValidationError is a rejected answer. Code is a message key of the script,
// Params fill its placeholders.
type ValidationError struct {
	Field  Field
	Code   string
	Params map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Code)
}

func invalid(field Field, code string, params map[string]string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Params: params}
}

// Validator checks raw answers against the rules of the current script.
// It has no side effects.
type Validator struct {
	script *models.Script
	loc    *time.Location
	now    func() time.Time
}

func New(script *models.Script, loc *time.Location, now func() time.Time) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{script: script, loc: loc, now: now}
}

// Validate returns the normalized form of raw or a *ValidationError.
func (v *Validator) Validate(field Field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid(field, "required", nil)
	}

	switch field {
	case FieldWelcome:
		if matchToken(raw, v.script.WelcomeTokens) || matchToken(raw, v.script.YesTokens) {
			return "go", nil
		}
		return "", invalid(field, "invalid_choice", map[string]string{"options": firstOr(v.script.WelcomeTokens, "GO")})
	case FieldText:
		return RequireText(field, raw)
	case FieldTier:
		return MatchChoice(field, raw, v.script.TierChoices())
	case FieldPayment:
		return MatchChoice(field, raw, v.script.Payments)
	case FieldYesNo:
		return v.YesNo(raw)
	case FieldHours:
		return IntInRange(field, raw, 1, 48)
	case FieldPassengers:
		return IntInRange(field, raw, 1, 8)
	case FieldBags:
		return IntInRange(field, raw, 0, 10)
	case FieldDate:
		return v.Date(raw)
	case FieldTime:
		return Time(raw)
	case FieldPhone:
		return NormalizePhone(raw, v.script.CountryCode)
	case FieldCode:
		code := strings.ReplaceAll(raw, " ", "")
		if !codePattern.MatchString(code) {
			return "", invalid(field, "invalid_code", nil)
		}
		return code, nil
	}
	return "", fmt.Errorf("validation: unknown field %q", field)
}

// RequireText trims raw and strips markup characters.
func RequireText(field Field, raw string) (string, error) {
	text := strings.TrimSpace(markup.Replace(raw))
	if text == "" {
		return "", invalid(field, "required", nil)
	}
	return text, nil
}

// MatchChoice resolves raw against the value, label and aliases of each choice,
// case-insensitively, and returns the canonical value.
func MatchChoice(field Field, raw string, choices []models.Choice) (string, error) {
	for _, c := range choices {
		if matchToken(raw, append([]string{c.Value, c.Label}, c.Aliases...)) {
			return c.Value, nil
		}
	}
	labels := make([]string, 0, len(choices))
	for _, c := range choices {
		if c.Label != "" {
			labels = append(labels, c.Label)
		} else {
			labels = append(labels, c.Value)
		}
	}
	return "", invalid(field, "invalid_choice", map[string]string{"options": strings.Join(labels, ", ")})
}

// YesNo normalizes a yes/no answer to Yes or No.
func (v *Validator) YesNo(raw string) (string, error) {
	switch {
	case matchToken(raw, v.script.YesTokens):
		return Yes, nil
	case matchToken(raw, v.script.NoTokens):
		return No, nil
	}
	return "", invalid(FieldYesNo, "invalid_choice", map[string]string{
		"options": firstOr(v.script.YesTokens, Yes) + ", " + firstOr(v.script.NoTokens, No),
	})
}

// IntInRange parses an integer within [min, max]. A trailing "+" (as in the
// "4+" button) is accepted.
func IntInRange(field Field, raw string, min, max int) (string, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "+"))
	if err != nil {
		return "", invalid(field, "not_a_number", nil)
	}
	if n < min || n > max {
		return "", invalid(field, "out_of_range", map[string]string{
			"min": strconv.Itoa(min),
			"max": strconv.Itoa(max),
		})
	}
	return strconv.Itoa(n), nil
}

// Date parses raw as a calendar date and rejects days before today in the
// validator's time zone.
func (v *Validator) Date(raw string) (string, error) {
	var day time.Time
	var err error
	for _, layout := range dateLayouts {
		if day, err = time.ParseInLocation(layout, raw, v.loc); err == nil {
			break
		}
	}
	if err != nil {
		return "", invalid(FieldDate, "invalid_date", nil)
	}
	now := v.now().In(v.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
	if day.Before(today) {
		return "", invalid(FieldDate, "past_date", nil)
	}
	return day.Format(DateLayout), nil
}

// Time parses a local time of day and returns it as HH:MM.
func Time(raw string) (string, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.ToLower(raw)); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", invalid(FieldTime, "invalid_time", nil)
}

// NormalizePhone converts raw to E.164. A leading national "0" is replaced by
// +countryCode, a leading "00" by "+"; numbers already starting with "+" are
// only stripped of separators.
func NormalizePhone(raw, countryCode string) (string, error) {
	phone := phoneNoise.Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(phone, "+"):
	case strings.HasPrefix(phone, "00"):
		phone = "+" + phone[2:]
	case strings.HasPrefix(phone, "0"):
		phone = "+" + countryCode + phone[1:]
	default:
		phone = "+" + phone
	}
	if !phonePattern.MatchString(phone) {
		return "", invalid(FieldPhone, "invalid_phone", nil)
	}
	return phone, nil
}

// IsValidPhone reports whether phone is already in the accepted E.164 form.
func IsValidPhone(phone string) bool {
	return strings.HasPrefix(phone, "+") && phonePattern.MatchString(phone)
}

func matchToken(raw string, tokens []string) bool {
	for _, t := range tokens {
		if strings.EqualFold(strings.TrimSpace(raw), strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

func firstOr(tokens []string, fallback string) string {
	if len(tokens) == 0 {
		return fallback
	}
	return tokens[0]
}
