package validation

import (
	"errors"
	"testing"
	"time"

	"vtcland/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	now := func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC) }
	return New(config.DefaultScript(), time.UTC, now)
}

func TestValidate_Accepts(t *testing.T) {
	v := newTestValidator()
	cases := []struct {
		name  string
		field Field
		raw   string
		want  string
	}{
		{"welcome button", FieldWelcome, "GO !", "go"},
		{"welcome plain", FieldWelcome, "go", "go"},
		{"name", FieldText, "  Alice  ", "Alice"},
		{"name markup stripped", FieldText, "<b>Alice</b>", "bAlice/b"},
		{"tier id", FieldTier, "DirectComfort", "DirectComfort"},
		{"tier label", FieldTier, "Trajet Premium", "DirectPremium"},
		{"tier alias", FieldTier, "mise a disposition", "Hourly"},
		{"hours low", FieldHours, "1", "1"},
		{"hours high", FieldHours, "48", "48"},
		{"passengers", FieldPassengers, "8", "8"},
		{"bags zero", FieldBags, "0", "0"},
		{"bags plus button", FieldBags, "4+", "4"},
		{"yes", FieldYesNo, "Oui", Yes},
		{"no", FieldYesNo, "NON", No},
		{"date iso", FieldDate, "2025-06-01", "2025-06-01"},
		{"date today", FieldDate, "2025-05-01", "2025-05-01"},
		{"date french", FieldDate, "01/06/2025", "2025-06-01"},
		{"time", FieldTime, "14:00", "14:00"},
		{"time french", FieldTime, "9h30", "09:30"},
		{"payment id", FieldPayment, "Card", "Card"},
		{"payment label", FieldPayment, "Espèces", "Cash"},
		{"phone national", FieldPhone, "0612345678", "+33612345678"},
		{"phone international", FieldPhone, "+33612345678", "+33612345678"},
		{"phone separators", FieldPhone, "06 12 34 56 78", "+33612345678"},
		{"phone double zero", FieldPhone, "0033612345678", "+33612345678"},
		{"code", FieldCode, "123 456", "123456"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Validate(tc.field, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	v := newTestValidator()
	cases := []struct {
		name  string
		field Field
		raw   string
		code  string
	}{
		{"empty", FieldText, "   ", "required"},
		{"markup only", FieldText, "<>", "required"},
		{"welcome other", FieldWelcome, "bonjour", "invalid_choice"},
		{"unknown tier", FieldTier, "Helicopter", "invalid_choice"},
		{"hours zero", FieldHours, "0", "out_of_range"},
		{"hours too many", FieldHours, "49", "out_of_range"},
		{"passengers zero", FieldPassengers, "0", "out_of_range"},
		{"passengers nine", FieldPassengers, "9", "out_of_range"},
		{"passengers text", FieldPassengers, "deux", "not_a_number"},
		{"bags eleven", FieldBags, "11", "out_of_range"},
		{"bags negative", FieldBags, "-1", "out_of_range"},
		{"yes no other", FieldYesNo, "peut-être", "invalid_choice"},
		{"date past", FieldDate, "2025-04-30", "past_date"},
		{"date garbage", FieldDate, "demain", "invalid_date"},
		{"time garbage", FieldTime, "midi", "invalid_time"},
		{"time out of range", FieldTime, "25:00", "invalid_time"},
		{"payment other", FieldPayment, "Bitcoin", "invalid_choice"},
		{"phone short", FieldPhone, "06123", "invalid_phone"},
		{"phone letters", FieldPhone, "+33abcdefghi", "invalid_phone"},
		{"phone too long", FieldPhone, "+3361234567890123", "invalid_phone"},
		{"code letters", FieldCode, "12ab56", "invalid_code"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(tc.field, tc.raw)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
			assert.Equal(t, tc.code, verr.Code)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidate_OutOfRangeParams(t *testing.T) {
	v := newTestValidator()
	_, err := v.Validate(FieldPassengers, "12")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"min": "1", "max": "8"}, verr.Params)
}

func TestValidate_DateUsesValidatorTimezone(t *testing.T) {
	// 23:30 UTC on April 30th is already May 1st in Paris.
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2025, 4, 30, 23, 30, 0, 0, time.UTC) }
	v := New(config.DefaultScript(), paris, now)

	_, err = v.Validate(FieldDate, "2025-04-30")
	assert.Error(t, err)
	got, err := v.Validate(FieldDate, "2025-05-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", got)
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+33612345678"))
	assert.False(t, IsValidPhone("0612345678"))
	assert.False(t, IsValidPhone("+336"))
}

func TestValidate_UnknownField(t *testing.T) {
	v := newTestValidator()
	_, err := v.Validate(Field("shoe_size"), "42")
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}
