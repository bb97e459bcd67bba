// Package validation checks request payloads with struct tags and reports
// field errors in English and Brazilian Portuguese.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	pt_BR_translations "github.com/go-playground/validator/v10/translations/pt_BR"
)

// Error lists the fields that failed validation, keyed by their JSON name.
type Error struct {
	EN map[string]string
	PT map[string]string
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.EN))
	for field, msg := range e.EN {
		fields = append(fields, field+": "+msg)
	}
	return "validation failed: " + strings.Join(fields, "; ")
}

// Validator validates structs and translates failures.
type Validator struct {
	validate *validator.Validate
	en       ut.Translator
	pt       ut.Translator
}

// New creates a Validator with en and pt_BR translations registered.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, pt_BR.New())

	enTrans, _ := uni.GetTranslator("en")
	ptTrans, _ := uni.GetTranslator("pt_BR")

	if err := en_translations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, fmt.Errorf("failed to register en translations: %w", err)
	}
	if err := pt_BR_translations.RegisterDefaultTranslations(validate, ptTrans); err != nil {
		return nil, fmt.Errorf("failed to register pt_BR translations: %w", err)
	}

	return &Validator{validate: validate, en: enTrans, pt: ptTrans}, nil
}

// Struct validates s. It returns nil, an *Error describing the failing fields,
// or the validator's own error when s is not a struct.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Error{
		EN: make(map[string]string, len(fieldErrs)),
		PT: make(map[string]string, len(fieldErrs)),
	}
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		out.EN[field] = fe.Translate(v.en)
		out.PT[field] = fe.Translate(v.pt)
	}

	return out
}

// fieldPath drops the root struct name from the namespace: "registerRequest.data.email" -> "data.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
