package render

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DateLayout for date-only request fields like date_of_birth
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("adult", validateAdultBirthDate)
	_ = v.RegisterValidation("passwordchars", validatePasswordChars)
	v.RegisterTagNameFunc(useJSONTagNames)
	return v
}

// Report on 'TagName' json tag instead of struct name
// Look at documentation of 'RegisterTagNameFunc' for more details
func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// validateAdultBirthDate accepts a "2006-01-02" date of a person aged 18..100
// Riders and drivers must be adults, anything past 100 years is a typo
func validateAdultBirthDate(fl validator.FieldLevel) bool {
	born, err := time.Parse(DateLayout, fl.Field().String())
	if err != nil {
		return false
	}

	age := yearsSince(born, time.Now())
	return age >= 18 && age <= 100
}

// validatePasswordChars requires at least one letter and one number
func validatePasswordChars(fl validator.FieldLevel) bool {
	var hasLetter, hasDigit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasLetter && hasDigit
}

// yearsSince counts whole years between born and now
func yearsSince(born time.Time, now time.Time) int {
	years := now.Year() - born.Year()

	// Birthday not reached yet this year
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}

	return years
}
