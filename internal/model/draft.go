package model

import "strings"

// Field names one input of the intake form.
type Field int

const (
	FieldOwnerName Field = iota
	FieldRUT
	FieldPhone
	FieldEmail
	FieldType
	FieldSize
	FieldCondition
	FieldNotes
)

// Fields lists every draft field in form order.
var Fields = []Field{
	FieldOwnerName, FieldRUT, FieldPhone, FieldEmail, FieldType, FieldSize, FieldCondition, FieldNotes,
}

// RequiredFields lists the fields that must be non-blank to submit.
var RequiredFields = []Field{
	FieldOwnerName, FieldRUT, FieldPhone, FieldEmail, FieldType, FieldSize, FieldCondition,
}

// Label is the Spanish form label of the field.
func (f Field) Label() string {
	switch f {
	case FieldOwnerName:
		return "Nombre Completo"
	case FieldRUT:
		return "RUT"
	case FieldPhone:
		return "Teléfono"
	case FieldEmail:
		return "Correo Electrónico"
	case FieldType:
		return "Tipo de Prenda"
	case FieldSize:
		return "Talla"
	case FieldCondition:
		return "Estado de la Prenda"
	case FieldNotes:
		return "Observaciones"
	default:
		return "?"
	}
}

// IsSelector reports whether the field takes one of a fixed set of values.
func (f Field) IsSelector() bool {
	return f == FieldType || f == FieldSize || f == FieldCondition
}

// Draft is an unsaved intake record. Every field is kept as typed text;
// selectors hold the enumerated value's string.
type Draft struct {
	OwnerName string
	RUT       string
	Phone     string
	Email     string
	Type      string
	Size      string
	Condition string
	Notes     string
}

// Get returns the current value of f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldOwnerName:
		return d.OwnerName
	case FieldRUT:
		return d.RUT
	case FieldPhone:
		return d.Phone
	case FieldEmail:
		return d.Email
	case FieldType:
		return d.Type
	case FieldSize:
		return d.Size
	case FieldCondition:
		return d.Condition
	case FieldNotes:
		return d.Notes
	default:
		return ""
	}
}

// Set returns a copy of d with f set to v.
func (d Draft) Set(f Field, v string) Draft {
	switch f {
	case FieldOwnerName:
		d.OwnerName = v
	case FieldRUT:
		d.RUT = v
	case FieldPhone:
		d.Phone = v
	case FieldEmail:
		d.Email = v
	case FieldType:
		d.Type = v
	case FieldSize:
		d.Size = v
	case FieldCondition:
		d.Condition = v
	case FieldNotes:
		d.Notes = v
	}
	return d
}

// IsEmpty reports whether d equals the initial empty draft.
func (d Draft) IsEmpty() bool { return d == Draft{} }

// Payload serialises the draft for the create request. Text fields are
// trimmed; selector values are sent as chosen.
func (d Draft) Payload() CreatePayload {
	return CreatePayload{
		OwnerName: strings.TrimSpace(d.OwnerName),
		RUT:       strings.TrimSpace(d.RUT),
		Email:     strings.TrimSpace(d.Email),
		Type:      GarmentType(d.Type),
		Phone:     strings.TrimSpace(d.Phone),
		Size:      Size(d.Size),
		Condition: Condition(d.Condition),
		Notes:     strings.TrimSpace(d.Notes),
	}
}
