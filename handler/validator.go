package handler

import (
	"errors"
	"fmt"
	"regexp"

	"mgstats/entity"
	"mgstats/pkg/validator"
)

const maxDomainLength = 253

var ErrInvalidCount = errors.New("invalid count")

var domainRegex = regexp.MustCompile(`^[0-9a-zA-Z]([0-9a-zA-Z-]*[0-9a-zA-Z])?(\.[0-9a-zA-Z]([0-9a-zA-Z-]*[0-9a-zA-Z])?)*$`)

var ContextInfoValidator = validator.MustForm(map[string]validator.Validator{
	"domain": DomainValidator(false),
})

func DomainValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		MinLen:   1,
		MaxLen:   maxDomainLength,
		Regex:    domainRegex,
	}
}

func EventValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		Validators: []validator.StringFunc{
			func(s string) error {
				if _, err := entity.ParseEvent(s); err != nil {
					return fmt.Errorf("%w: %q", err, s)
				}
				return nil
			},
		},
	}
}

func ResolutionValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		Validators: []validator.StringFunc{
			func(s string) error {
				if !entity.Resolution(s).IsValid() {
					return fmt.Errorf("%w: %q", entity.ErrUnsupportedResolution, s)
				}
				return nil
			},
		},
	}
}

func DurationValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		Validators: []validator.StringFunc{
			func(s string) error {
				if !entity.Duration(s).IsValid() {
					return fmt.Errorf("%w: %q", entity.ErrInvalidDuration, s)
				}
				return nil
			},
		},
	}
}

func DateValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		Validators: []validator.StringFunc{
			func(s string) error {
				_, err := entity.ParseDate(s)
				return err
			},
		},
	}
}

func SeverityValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional: optional,
		Validators: []validator.StringFunc{
			func(s string) error {
				if !entity.Severity(s).IsValid() {
					return fmt.Errorf("invalid severity: %q", s)
				}
				return nil
			},
		},
	}
}
