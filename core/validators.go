package core

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/volatiletech/null/v8"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation texts
	requiredTag  = "required"
	requiredText = "this field is required"
)

func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	Translator, _ = uni.GetTranslator("en")
	Validate = validator.New()
	InitValidators(Validate, Translator)
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Unwrap nullable fields so tags like gt/oneof see the inner value; an
	// unset field yields nil, which omitempty then skips.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch v := field.Interface().(type) {
		case null.Int:
			if !v.Valid {
				return nil
			}
			return v.Int
		case null.String:
			if !v.Valid {
				return nil
			}
			return v.String
		case null.Bool:
			if !v.Valid {
				return nil
			}
			return v.Bool
		}
		return nil
	}, null.Int{}, null.String{}, null.Bool{})

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ValidateStruct runs the shared validator over `v` and converts failures
// into a ValidationError with translated per-field messages.
func ValidateStruct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		log.Printf("core.ValidateStruct: %v", err)
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(Translator)})
	}
	return NewValidationError(err, flds...)
}
