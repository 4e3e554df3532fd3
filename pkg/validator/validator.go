package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrMissingValue  = errors.New("missing value")
	ErrInvalidType   = errors.New("invalid type")
	ErrTooShort      = errors.New("too short")
	ErrTooLong       = errors.New("too long")
	ErrRegexMismatch = errors.New("format mismatch")
)

type Validator interface {
	Validate(value interface{}) error
}

type StringFunc func(s string) error

// String validates string values, pointers to strings and named string types.
// An Optional string may be nil or empty.
type String struct {
	Optional   bool
	MinLen     uint32
	MaxLen     uint32
	Regex      *regexp.Regexp
	Validators []StringFunc
}

func (v *String) Validate(value interface{}) error {
	s, isSet, err := toString(value)
	if err != nil {
		return err
	}

	if !isSet || s == "" {
		if v.Optional {
			return nil
		}
		if !isSet {
			return ErrMissingValue
		}
	}

	l := uint32(utf8.RuneCountInString(s))
	if v.MinLen > 0 && l < v.MinLen {
		return fmt.Errorf("%w: min length %d", ErrTooShort, v.MinLen)
	}
	if v.MaxLen > 0 && l > v.MaxLen {
		return fmt.Errorf("%w: max length %d", ErrTooLong, v.MaxLen)
	}

	if v.Regex != nil && !v.Regex.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrRegexMismatch, s)
	}

	for _, fn := range v.Validators {
		if err := fn(s); err != nil {
			return err
		}
	}

	return nil
}

func toString(value interface{}) (string, bool, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return "", false, nil
	}

	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", false, nil
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.String {
		return "", false, fmt.Errorf("%w: expect string, got %v", ErrInvalidType, rv.Type())
	}

	return rv.String(), true, nil
}

type Slice struct {
	Optional  bool
	MinLen    uint32
	MaxLen    uint32
	Validator Validator
}

func (v *Slice) Validate(value interface{}) error {
	rv := reflect.ValueOf(value)
	if rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv = reflect.Value{}
		} else {
			rv = rv.Elem()
		}
	}

	if rv.IsValid() && rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("%w: expect slice, got %v", ErrInvalidType, rv.Type())
	}

	if !rv.IsValid() || rv.Len() == 0 {
		if v.Optional {
			return nil
		}
		if v.MinLen > 0 || !rv.IsValid() {
			return ErrMissingValue
		}
		return nil
	}

	l := uint32(rv.Len())
	if v.MinLen > 0 && l < v.MinLen {
		return fmt.Errorf("%w: min length %d", ErrTooShort, v.MinLen)
	}
	if v.MaxLen > 0 && l > v.MaxLen {
		return fmt.Errorf("%w: max length %d", ErrTooLong, v.MaxLen)
	}

	if v.Validator == nil {
		return nil
	}

	for i := 0; i < rv.Len(); i++ {
		if err := v.Validator.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}

	return nil
}

// Form validates the fields of a struct. Fields are looked up by their schema
// tag, then json tag, then Go name.
type Form struct {
	validators map[string]Validator
}

func MustForm(validators map[string]Validator) *Form {
	for name, v := range validators {
		if v == nil {
			panic(fmt.Sprintf("validator of field %s is nil", name))
		}
	}
	return &Form{
		validators: validators,
	}
}

func (f *Form) Validate(value interface{}) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return ErrMissingValue
	}

	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ErrMissingValue
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: expect struct, got %v", ErrInvalidType, rv.Type())
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := fieldName(sf)

		v, ok := f.validators[name]
		if !ok {
			continue
		}

		if err := v.Validate(rv.Field(i).Interface()); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

func fieldName(sf reflect.StructField) string {
	for _, key := range []string{"schema", "json"} {
		tag, ok := sf.Tag.Lookup(key)
		if !ok {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			return name
		}
	}
	return sf.Name
}
