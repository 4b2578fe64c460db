package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	errors "github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/go-playground/validator/v10"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case []string:
			if len(v) == 0 {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) < min {
				message := fmt.Sprintf("%s must be at least %d characters", name, min)
				return errors.NewValidationFieldError(name, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", name, max)
				return errors.NewValidationFieldError(name, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// OneOf accepts empty values; combine with Required when the field is mandatory.
func (fv *FieldValidator) OneOf(code errors.ErrorCode, allowed ...string) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		message := fmt.Sprintf("%s must be one of %s", name, strings.Join(allowed, ", "))
		return errors.NewValidationFieldError(name, message, code)
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Struct runs `validate` tags on a request DTO and reports every failing
// field using its json name.
func Struct(dto interface{}) *errors.AppError {
	err := structValidator.Struct(dto)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(err.Error(), errors.ErrCodeValidationFailed)
	}

	out := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()),
			Code:    string(errors.ErrCodeValidationFailed),
		})
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: out})
}

func init() {
	structValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateServiceTypes rejects tags for which known returns false.
func ValidateServiceTypes(field string, tags []string, known func(string) bool) *errors.AppError {
	v := NewValidator()
	v.Field(field, tags).Custom(func(value interface{}) *errors.AppError {
		for _, t := range value.([]string) {
			if !known(t) {
				return errors.NewValidationFieldError(field, fmt.Sprintf("unknown service type %q", t), errors.ErrCodeInvalidService)
			}
		}
		return nil
	})
	return v.Validate()
}

// ValidatePermissions converts scope errors into field errors.
func ValidatePermissions(p access.UserPermissions) *errors.AppError {
	err := p.Validate()
	if err == nil {
		return nil
	}

	var details []errors.ValidationError
	var joined interface{ Unwrap() []error }
	errs := []error{err}
	if stderrors.As(err, &joined) {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var scopeErr *access.InvalidScopeError
		if stderrors.As(e, &scopeErr) {
			details = append(details, errors.ValidationError{
				Field:   string(scopeErr.Field),
				Message: scopeErr.Error(),
				Code:    string(errors.ErrCodeInvalidScope),
			})
		}
	}
	return errors.NewValidationError("Invalid permissions", errors.ErrCodeInvalidScope).
		WithDetails(errors.ValidationErrors{Errors: details})
}

// KnownIn adapts a list of catalog codes for ValidateServiceTypes.
func KnownIn(codes []string) func(string) bool {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(s string) bool {
		_, ok := set[s]
		return ok
	}
}

// ResolveServiceTypes validates the tags requested for a new or edited record.
// An empty request falls back to the default service type. Tags must be known
// to the catalog, and callers other than the developer must hold one of them.
func ResolveServiceTypes(field string, requested, codes []string, p *access.Principal) (access.ServiceTypes, *errors.AppError) {
	if len(requested) == 0 {
		requested = []string{string(access.DefaultServiceType)}
	}
	if codes != nil {
		if appErr := ValidateServiceTypes(field, requested, KnownIn(codes)); appErr != nil {
			return nil, appErr
		}
	}
	tags := access.ServiceTypesFromStrings(requested)
	if !p.IsDeveloper() && !p.Permissions.AllowedServiceTypes.Intersects(tags) {
		return nil, errors.NewValidationFieldError(field, "none of the service types are allowed for you", errors.ErrCodeInvalidService)
	}
	return tags, nil
}
