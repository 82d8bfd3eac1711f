package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

const phoneTag = "phone"

var phoneRgx = regexp.MustCompile(`^\+?[0-9 .()-]{5,15}$`)

type violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type PayloadError struct {
	violations []violation
}

func (e *PayloadError) Error() string {
	buff := bytes.NewBufferString("")

	for _, err := range e.violations {
		buff.WriteString(err.Message)
		buff.WriteString("\n")
	}

	return buff.String()
}

func (e *PayloadError) Violation(v violation) {
	e.violations = append(e.violations, v)
}

func (e *PayloadError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Errors []violation `json:"errors"`
	}{
		Errors: e.violations,
	})
}

type EchoValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

// New builds EchoValidator with en translations and the customer
// payload rules (phone format) registered.
func New() (*EchoValidator, error) {
	enLocale := en.New()
	unvTranslator := ut.New(enLocale, enLocale)

	trans, ok := unvTranslator.GetTranslator("en")
	if !ok {
		return nil, errors.New("missing en translator")
	}

	v := validator.New()
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("failed to register default en translations - %w", err)
	}

	if err := v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
		return phoneRgx.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register phone validation - %w", err)
	}

	err := v.RegisterTranslation(phoneTag, trans,
		func(ut ut.Translator) error {
			return ut.Add(phoneTag, "{0} must be a valid phone number", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(phoneTag, fe.Field())
			return t
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register phone translation - %w", err)
	}

	return Echo(v, trans), nil
}

func Echo(validator *validator.Validate, translator ut.Translator) *EchoValidator {
	return &EchoValidator{
		validator:  validator,
		translator: translator,
	}
}

func (v *EchoValidator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return v.payloadError(ve)
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (v *EchoValidator) payloadError(ve validator.ValidationErrors) error {
	pldErr := &PayloadError{violations: make([]violation, 0)}
	for _, e := range ve {
		pldErr.Violation(violation{
			Field:   e.Field(),
			Message: e.Translate(v.translator),
		})
	}
	return pldErr
}
