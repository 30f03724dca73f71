// Package validate checks request forms and reports problems as Vietnamese
// messages keyed by the JSON field name.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Normalizer is implemented by forms that trim or canonicalize input before checks
type Normalizer interface {
	Normalize()
}

// Errors maps a field name to the message shown next to it
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the alphabetically first field
func (e Errors) First() string {
	msg, _, _ := strings.Cut(e.Error(), "; ")
	return msg
}

// AsErrors extracts field errors from err
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var phonePattern = regexp.MustCompile(`^(0|\+84)[0-9]{9,10}$`)

// Validator wraps a configured validator with its Vietnamese translator
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// New creates a validator with json field names, custom tags and messages
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("vnphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	locale := vi.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("vi")

	registerMessages(v, trans)

	return &Validator{v: v, trans: trans}
}

// Struct normalizes and validates a form. It returns nil or Errors.
func (v *Validator) Struct(form any) error {
	if n, ok := form.(Normalizer); ok {
		n.Normalize()
	}

	err := v.v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = fe.Translate(v.trans)
	}
	return out
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Struct validates form with the shared default validator
func Struct(form any) error {
	defaultOnce.Do(func() {
		defaultV = New()
	})
	return defaultV.Struct(form)
}

type message struct {
	tag   string
	text  string
	items string // used instead of text for slices and maps
}

var messages = []message{
	{tag: "required", text: "{0} không được để trống"},
	{tag: "required_if", text: "{0} không được để trống"},
	{tag: "email", text: "{0} không hợp lệ"},
	{tag: "url", text: "{0} phải là đường dẫn hợp lệ"},
	{tag: "vnphone", text: "{0} không phải là số điện thoại hợp lệ"},
	{tag: "min", text: "{0} phải có ít nhất {1} ký tự", items: "{0} phải có ít nhất {1} mục"},
	{tag: "max", text: "{0} không được vượt quá {1} ký tự", items: "{0} không được vượt quá {1} mục"},
	{tag: "eqfield", text: "{0} không khớp với {1}"},
	{tag: "oneof", text: "{0} phải là một trong [{1}]"},
	{tag: "unique", text: "{0} không được trùng lặp"},
	{tag: "gte", text: "{0} phải lớn hơn hoặc bằng {1}"},
	{tag: "lte", text: "{0} phải nhỏ hơn hoặc bằng {1}"},
}

func registerMessages(v *validator.Validate, trans ut.Translator) {
	for _, m := range messages {
		m := m
		_ = v.RegisterTranslation(m.tag, trans,
			func(t ut.Translator) error {
				if err := t.Add(m.tag, m.text, true); err != nil {
					return err
				}
				if m.items != "" {
					return t.Add(m.tag+"-items", m.items, true)
				}
				return nil
			},
			func(t ut.Translator, fe validator.FieldError) string {
				key := m.tag
				if m.items != "" && (fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map) {
					key = m.tag + "-items"
				}
				msg, err := t.T(key, fe.Field(), fe.Param())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
	}
}
