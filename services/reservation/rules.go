package reservation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"vtcland/models"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator carrying the field tags of
// models.Reservation plus the cross-field rules that depend on the tier.
func newValidator(script *models.Script, loc *time.Location, now func() time.Time) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(models.Reservation)

		switch script.TierKindOf(r.ServiceTier) {
		case models.TierKindDirect:
			if r.Destination == "" {
				sl.ReportError(r.Destination, "destination", "Destination", "required_for_direct", "")
			}
			if r.Hours != 0 {
				sl.ReportError(r.Hours, "hours", "Hours", "excluded_for_direct", "")
			}
		case models.TierKindHourly:
			if r.Hours == 0 {
				sl.ReportError(r.Hours, "hours", "Hours", "required_for_hourly", "")
			}
			if r.Destination != "" {
				sl.ReportError(r.Destination, "destination", "Destination", "excluded_for_hourly", "")
			}
		default:
			sl.ReportError(r.ServiceTier, "serviceTier", "ServiceTier", "known_tier", "")
		}

		if r.PaymentMethod != "" && !script.HasPayment(r.PaymentMethod) {
			sl.ReportError(r.PaymentMethod, "paymentMethod", "PaymentMethod", "known_payment", "")
		}
		if !r.PhoneVerified {
			sl.ReportError(r.PhoneVerified, "phoneVerified", "PhoneVerified", "verified", "")
		}
		if !r.BagCountConsistent() {
			sl.ReportError(r.BagCount, "bagCount", "BagCount", "luggage", "")
		}

		if day, err := time.ParseInLocation("2006-01-02", r.Date, loc); err == nil {
			n := now().In(loc)
			today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
			if day.Before(today) {
				sl.ReportError(r.Date, "date", "Date", "not_past", "")
			}
		}
	}, models.Reservation{})
	return v
}

// rejectedFields converts validator output into a RejectedError.
func rejectedFields(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	seen := map[string]bool{}
	for _, fe := range verrs {
		name := fe.Field()
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	return &RejectedError{Fields: fields}
}
