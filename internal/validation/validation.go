package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validDays = map[string]struct{}{
	"Monday":    {},
	"Tuesday":   {},
	"Wednesday": {},
	"Thursday":  {},
	"Friday":    {},
	"Saturday":  {},
	"Sunday":    {},
}

var validClassTypes = map[string]struct{}{
	"Flow Yoga":   {},
	"Aerial Yoga": {},
	"Family Yoga": {},
}

// 24-hour HH:MM.
var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// IsDayOfWeek reports whether day names one of the seven weekdays.
func IsDayOfWeek(day string) bool {
	_, ok := validDays[day]
	return ok
}

// IsTimeOfDay reports whether t is a 24-hour HH:MM string.
func IsTimeOfDay(t string) bool {
	return timePattern.MatchString(t)
}

// IsCapacity reports whether n is an allowed class capacity.
func IsCapacity(n int) bool {
	return n > 0 && n <= 50
}

// IsDuration reports whether minutes is an allowed class duration.
func IsDuration(minutes int) bool {
	return minutes > 0 && minutes <= 180
}

// IsPrice reports whether p is an allowed per-class price.
func IsPrice(p float64) bool {
	return p >= 0 && p <= 100
}

// IsClassType reports whether t is a known class category.
func IsClassType(t string) bool {
	_, ok := validClassTypes[t]
	return ok
}

// Register installs the domain validators on a validator instance under
// the tags dayofweek, classtime and classtype.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("dayofweek", func(fl validator.FieldLevel) bool {
		return IsDayOfWeek(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("classtime", func(fl validator.FieldLevel) bool {
		return IsTimeOfDay(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("classtype", func(fl validator.FieldLevel) bool {
		return IsClassType(fl.Field().String())
	})
}

// NewValidator returns a validator with the domain tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = Register(v)
	return v
}
