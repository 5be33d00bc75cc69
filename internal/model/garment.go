package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"lostfound-desk/internal/parse"
)

// Garment is a persisted lost-garment record. The ID is assigned by the
// backend and is the only identity the desk relies on.
type Garment struct {
	ID           int64        `gorm:"primaryKey" json:"id"`
	OwnerName    string       `gorm:"column:nombre;size:256;not null" json:"nombre"`
	RUT          string       `gorm:"column:rut;size:32;not null" json:"rut"`
	RUTKey       string       `gorm:"column:rut_key;size:32;index;not null" json:"-"`
	Phone        string       `gorm:"column:telefono;size:64;not null" json:"telefono"`
	Email        string       `gorm:"column:email;size:256;not null" json:"email"`
	Type         GarmentType  `gorm:"column:tipo_prenda;size:64;not null" json:"tipo_prenda"`
	Size         Size         `gorm:"column:talla;size:8;not null" json:"talla"`
	Condition    Condition    `gorm:"column:estado;size:32;not null" json:"estado"`
	Notes        string       `gorm:"column:observaciones;type:text" json:"observaciones"`
	ReturnStatus ReturnStatus `gorm:"column:estado_devolucion;size:64" json:"estado_devolucion"`
	ReturnedAt   *time.Time   `gorm:"column:fecha_devolucion" json:"fecha_devolucion"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	skipped []string
}

// TableName keeps the backend's table name.
func (Garment) TableName() string { return "prendas" }

// Clone returns a deep copy; the copy shares no pointers with g.
func (g Garment) Clone() Garment {
	if g.ReturnedAt != nil {
		t := *g.ReturnedAt
		g.ReturnedAt = &t
	}
	if g.skipped != nil {
		g.skipped = append([]string(nil), g.skipped...)
	}
	return g
}

// WithReturnStatus returns a copy of g carrying status, stamped at.
func (g Garment) WithReturnStatus(status ReturnStatus, at time.Time) Garment {
	out := g.Clone()
	out.ReturnStatus = status
	out.ReturnedAt = &at
	return out
}

// UnmarshalJSON reads the record timestamps best effort. A timestamp in an
// unknown form leaves its field unset and is listed by SkippedTimestamps;
// it never fails the record.
func (g *Garment) UnmarshalJSON(data []byte) error {
	type plain Garment
	aux := struct {
		*plain
		ReturnedAt json.RawMessage `json:"fecha_devolucion"`
		CreatedAt  json.RawMessage `json:"created_at"`
		UpdatedAt  json.RawMessage `json:"updated_at"`
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	g.skipped = nil
	g.ReturnedAt = nil
	if t, ok := g.readTimestamp("fecha_devolucion", aux.ReturnedAt); ok && !t.IsZero() {
		g.ReturnedAt = &t
	}
	if t, ok := g.readTimestamp("created_at", aux.CreatedAt); ok {
		g.CreatedAt = t
	}
	if t, ok := g.readTimestamp("updated_at", aux.UpdatedAt); ok {
		g.UpdatedAt = t
	}
	return nil
}

// SkippedTimestamps names the JSON timestamp fields that could not be read
// when g was decoded.
func (g Garment) SkippedTimestamps() []string { return g.skipped }

func (g *Garment) readTimestamp(field string, raw json.RawMessage) (time.Time, bool) {
	t, err := decodeTimestamp(raw)
	if err != nil {
		g.skipped = append(g.skipped, field)
		return time.Time{}, false
	}
	return t, true
}

// decodeTimestamp accepts a string in any layout parse.Timestamp knows, a
// Unix time in seconds or milliseconds, or null.
func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return time.Time{}, nil
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return time.Time{}, err
		}
		return parse.Timestamp(s, nil)
	}
	n, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp %s", v)
	}
	return parse.Epoch(n), nil
}

// CreatePayload is the body of the create request.
type CreatePayload struct {
	OwnerName string      `json:"nombre" binding:"required"`
	RUT       string      `json:"rut" binding:"required"`
	Email     string      `json:"email" binding:"required"`
	Type      GarmentType `json:"tipo_prenda" binding:"required"`
	Phone     string      `json:"telefono" binding:"required"`
	Size      Size        `json:"talla" binding:"required"`
	Condition Condition   `json:"estado" binding:"required"`
	Notes     string      `json:"observaciones"`
}

// Garment builds the record a payload describes. The backend assigns the ID.
func (p CreatePayload) Garment() Garment {
	return Garment{
		OwnerName: p.OwnerName,
		RUT:       p.RUT,
		Phone:     p.Phone,
		Email:     p.Email,
		Type:      p.Type,
		Size:      p.Size,
		Condition: p.Condition,
		Notes:     p.Notes,
	}
}

// CreatedGarment is the part of the create response the desk reads.
type CreatedGarment struct {
	ID      int64  `json:"id"`
	Message string `json:"message,omitempty"`
}

// SearchEnvelope is the wrapped search response. Some deployments answer
// with a bare array instead; see backend.decodeSearch.
type SearchEnvelope struct {
	Message string    `json:"message"`
	Count   int       `json:"count"`
	RUT     string    `json:"rut"`
	Data    []Garment `json:"data"`
}

// StatusUpdatePayload is the body of the status-mutation request.
type StatusUpdatePayload struct {
	ReturnStatus ReturnStatus `json:"estado_devolucion" binding:"required"`
}

// EmailStatus reports whether the backend handed an owner email off for delivery.
type EmailStatus struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

// StatusUpdateResponse is the body returned by a successful status mutation.
type StatusUpdateResponse struct {
	Message     string       `json:"message,omitempty"`
	Data        *Garment     `json:"data,omitempty"`
	EmailStatus *EmailStatus `json:"emailStatus,omitempty"`
}

// ErrorBody is the error payload the backend answers with.
type ErrorBody struct {
	Message string `json:"message"`
}
