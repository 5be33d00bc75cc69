package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tone is the colour family a view uses to render a value as a chip.
type Tone string

const (
	ToneSuccess   Tone = "success"
	TonePrimary   Tone = "primary"
	ToneInfo      Tone = "info"
	ToneWarning   Tone = "warning"
	ToneError     Tone = "error"
	ToneSecondary Tone = "secondary"
	ToneDefault   Tone = "default"
)

// GarmentType is the kind of garment registered at intake.
type GarmentType string

const (
	TypeShirt    GarmentType = "Camisa"
	TypeTrousers GarmentType = "Pantalón"
	TypeDress    GarmentType = "Vestido"
	TypeSkirt    GarmentType = "Falda"
	TypeBlouse   GarmentType = "Blusa"
	TypeJacket   GarmentType = "Chaqueta"
	TypeCoat     GarmentType = "Abrigo"
	TypeSweater  GarmentType = "Suéter"
	TypeShoes    GarmentType = "Zapatos"
	TypeTShirt   GarmentType = "Camiseta"
	TypeUniform  GarmentType = "Uniforme"
	TypeSneaker  GarmentType = "Zapatilla"
	TypeCap      GarmentType = "Gorro"
	TypeLunchbox GarmentType = "Lonchera"
)

// GarmentTypes lists the garment types in display order.
var GarmentTypes = []GarmentType{
	TypeShirt, TypeTrousers, TypeDress, TypeSkirt, TypeBlouse, TypeJacket, TypeCoat,
	TypeSweater, TypeShoes, TypeTShirt, TypeUniform, TypeSneaker, TypeCap, TypeLunchbox,
}

// Size is a garment size. Sizes are ordered from smallest to largest.
type Size string

const (
	SizeXS   Size = "XS"
	SizeS    Size = "S"
	SizeM    Size = "M"
	SizeL    Size = "L"
	SizeXL   Size = "XL"
	SizeXXL  Size = "XXL"
	SizeXXXL Size = "XXXL"
)

// Sizes lists the sizes in ascending order.
var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL}

// Rank returns the position of s in Sizes, or -1 when s is not a known size.
func (s Size) Rank() int {
	for i, v := range Sizes {
		if v == s {
			return i
		}
	}
	return -1
}

// Condition is the physical state of the garment at intake.
type Condition string

const (
	ConditionExcellent Condition = "Excelente"
	ConditionGood      Condition = "Bueno"
	ConditionFair      Condition = "Regular"
	ConditionDamaged   Condition = "Dañado"
)

// Conditions lists the conditions from best to worst.
var Conditions = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionDamaged}

// Tone maps a condition to its chip colour.
func (c Condition) Tone() Tone {
	switch c {
	case ConditionExcellent:
		return ToneSuccess
	case ConditionGood:
		return TonePrimary
	case ConditionFair:
		return ToneWarning
	default:
		return ToneError
	}
}

// ReturnStatus tracks whether and how a found garment left the desk.
// The empty value means the status has not been set yet and travels as JSON
// null and SQL NULL.
//
// Any status may follow any other; there is no transition table, so for
// example StatusDiscarded -> StatusReturned is accepted.
type ReturnStatus string

const (
	StatusPendingReturn ReturnStatus = "Encontrada - Pendiente de devolución"
	StatusReturned      ReturnStatus = "Devuelta al propietario"
	StatusUnclaimed     ReturnStatus = "No reclamada - En bodega"
	StatusDonated       ReturnStatus = "Donada"
	StatusDiscarded     ReturnStatus = "Desechada"
)

// ReturnStatuses lists the return statuses in lifecycle order.
var ReturnStatuses = []ReturnStatus{
	StatusPendingReturn, StatusReturned, StatusUnclaimed, StatusDonated, StatusDiscarded,
}

// IsSet reports whether a status has been assigned.
func (s ReturnStatus) IsSet() bool { return s != "" }

// Label is the text shown for the status; unset statuses read "No registrado".
func (s ReturnStatus) Label() string {
	if s == "" {
		return "No registrado"
	}
	return string(s)
}

// Tone maps a return status to its chip colour.
func (s ReturnStatus) Tone() Tone {
	switch s {
	case StatusReturned:
		return ToneSuccess
	case StatusPendingReturn:
		return ToneInfo
	case StatusUnclaimed:
		return ToneWarning
	case StatusDonated:
		return ToneSecondary
	case StatusDiscarded:
		return ToneError
	default:
		return ToneDefault
	}
}

// MarshalJSON encodes the unset status as null.
func (s ReturnStatus) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts a string or null.
func (s *ReturnStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("estado_devolucion: %w", err)
	}
	*s = ReturnStatus(raw)
	return nil
}

// Value implements driver.Valuer so the unset status is stored as NULL.
func (s ReturnStatus) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *ReturnStatus) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = ReturnStatus(v)
	case []byte:
		*s = ReturnStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into ReturnStatus", src)
	}
	return nil
}

// ParseGarmentType matches raw against the known garment types, ignoring
// case, surrounding space and Unicode composition ("Pantalón").
func ParseGarmentType(raw string) (GarmentType, bool) {
	return match(raw, GarmentTypes)
}

// ParseSize matches raw against the known sizes.
func ParseSize(raw string) (Size, bool) {
	return match(raw, Sizes)
}

// ParseCondition matches raw against the known conditions.
func ParseCondition(raw string) (Condition, bool) {
	return match(raw, Conditions)
}

// ParseReturnStatus matches raw against the known return statuses.
func ParseReturnStatus(raw string) (ReturnStatus, bool) {
	return match(raw, ReturnStatuses)
}

func match[T ~string](raw string, known []T) (T, bool) {
	s := norm.NFC.String(strings.TrimSpace(raw))
	for _, k := range known {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	var zero T
	return zero, false
}
