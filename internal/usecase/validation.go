package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct corre las etiquetas `validate` del DTO y aplana los
// fallos al formato que exponen los handlers.
func ValidateStruct(v any) []ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "_", Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(invalid))
	for _, fe := range invalid {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: "failed on '" + fe.Tag() + "'",
		})
	}
	return out
}

func joinValidationErrors(errs []ValidationError) string {
	msg := "validation failed: "
	for i, e := range errs {
		if i > 0 {
			msg += ", "
		}
		msg += e.Field + " (" + e.Message + ")"
	}
	return msg
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func isValidHexColor(color string) bool {
	return hexColorRe.MatchString(color)
}

func isValidTemperature(t string) bool {
	return t == entity.TemperatureHot || t == entity.TemperatureWarm || t == entity.TemperatureCold
}

// NormalizePhone deja el teléfono en E.164 cuando se puede parsear.
// Si no se puede, devuelve el valor crudo: mejor un dato feo que perderlo.
func NormalizePhone(raw string) string {
	num, err := phonenumbers.Parse(raw, "ES")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return strings.TrimSpace(raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
