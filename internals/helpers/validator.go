// file: internals/helpers/validator.go
package helper

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
	initOnce   sync.Once

	hhmmTag   = "hhmm"
	hhmmText  = "{0} must be a time in HH:MM or HH:MM:SS format"
	hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

	dateTag   = "ymd"
	dateText  = "{0} must be a date in YYYY-MM-DD format"
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	requiredTag  = "required"
	requiredText = "{0} is required"
)

// Validator mengembalikan instance tunggal yang sudah terdaftar translasi EN + tag custom.
func Validator() *validator.Validate {
	initOnce.Do(func() {
		validate = validator.New()
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		translator, _ = uni.GetTranslator("en")
		initValidators(validate, translator)
	})
	return validate
}

func initValidators(v *validator.Validate, t ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(v, t)

	// nama field di error = nama json
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(hhmmTag, func(fl validator.FieldLevel) bool {
		return hhmmRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	registerTranslation(v, t, hhmmTag, hhmmText)

	_ = v.RegisterValidation(dateTag, func(fl validator.FieldLevel) bool {
		return dateRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	registerTranslation(v, t, dateTag, dateText)

	registerTranslation(v, t, requiredTag, requiredText, true)
}

func registerTranslation(v *validator.Validate, t ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.RegisterTranslation(
		tag, t,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Validate menjalankan validasi struct; hasil nil = valid.
// Key map = namespace json (mis. "sessions[0].date").
func Validate(s any) map[string][]string {
	v := Validator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string][]string{"_": {err.Error()}}
	}

	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		out[key] = append(out[key], fe.Translate(translator))
	}
	return out
}
