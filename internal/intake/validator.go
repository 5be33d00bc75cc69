package intake

import (
	"strings"

	"lostfound-desk/internal/model"
)

// IsSubmittable reports whether every required field of d is non-blank
// after trimming. It is pure and cheap enough to call on every keystroke.
func IsSubmittable(d model.Draft) bool {
	for _, f := range model.RequiredFields {
		if isBlank(d.Get(f)) {
			return false
		}
	}
	return true
}

// FieldError returns the message to show under f, or "" when f is fine.
// Notes are optional and never report an error.
func FieldError(d model.Draft, f model.Field) string {
	if f == model.FieldNotes || !isBlank(d.Get(f)) {
		return ""
	}
	switch f {
	case model.FieldType:
		return "Debe seleccionar un tipo de prenda"
	case model.FieldSize:
		return "Debe seleccionar una talla"
	case model.FieldCondition:
		return "Debe seleccionar el estado de la prenda"
	default:
		return "Campo obligatorio"
	}
}

// FieldErrors returns the error message of every failing field.
func FieldErrors(d model.Draft) map[model.Field]string {
	errs := make(map[model.Field]string)
	for _, f := range model.RequiredFields {
		if msg := FieldError(d, f); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
