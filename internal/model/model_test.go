package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGarmentType_NormalisesComposition(t *testing.T) {
	// "Pantalón" spelt with a combining acute accent.
	decomposed := "Pantalo\u0301n"

	got, ok := ParseGarmentType("  " + decomposed + " ")
	require.True(t, ok)
	assert.Equal(t, TypeTrousers, got)

	got, ok = ParseGarmentType("camisa")
	require.True(t, ok)
	assert.Equal(t, TypeShirt, got)

	_, ok = ParseGarmentType("Bufanda")
	assert.False(t, ok)
}

func TestParseReturnStatus(t *testing.T) {
	got, ok := ParseReturnStatus("devuelta al propietario")
	require.True(t, ok)
	assert.Equal(t, StatusReturned, got)

	_, ok = ParseReturnStatus("")
	assert.False(t, ok)
}

func TestSizeRank(t *testing.T) {
	assert.Equal(t, 0, SizeXS.Rank())
	assert.Equal(t, 6, SizeXXXL.Rank())
	assert.Less(t, SizeM.Rank(), SizeL.Rank())
	assert.Equal(t, -1, Size("XXS").Rank())
}

func TestReturnStatus_LabelAndTone(t *testing.T) {
	var unset ReturnStatus
	assert.Equal(t, "No registrado", unset.Label())
	assert.Equal(t, ToneDefault, unset.Tone())
	assert.Equal(t, ToneSuccess, StatusReturned.Tone())
	assert.Equal(t, ToneInfo, StatusPendingReturn.Tone())
	assert.Equal(t, ToneSecondary, StatusDonated.Tone())
	assert.Equal(t, TonePrimary, ConditionGood.Tone())
	assert.Equal(t, ToneError, ConditionDamaged.Tone())
}

func TestReturnStatus_SQL(t *testing.T) {
	v, err := ReturnStatus("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var s ReturnStatus
	require.NoError(t, s.Scan([]byte("Donada")))
	assert.Equal(t, StatusDonated, s)
	require.NoError(t, s.Scan(nil))
	assert.Equal(t, ReturnStatus(""), s)
	assert.Error(t, s.Scan(42))
}

func TestGarment_UnmarshalJSON(t *testing.T) {
	body := `{
		"id": 7,
		"nombre": "Ana Pérez",
		"rut": "12345678-9",
		"telefono": "+56 9 1234 5678",
		"email": "ana@example.com",
		"tipo_prenda": "Chaqueta",
		"talla": "M",
		"estado": "Bueno",
		"observaciones": "",
		"estado_devolucion": null,
		"fecha_devolucion": null,
		"created_at": "2024-05-01 09:15:00"
	}`

	var g Garment
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Equal(t, int64(7), g.ID)
	assert.Equal(t, TypeJacket, g.Type)
	assert.Equal(t, SizeM, g.Size)
	assert.False(t, g.ReturnStatus.IsSet())
	assert.Nil(t, g.ReturnedAt)
	assert.True(t, time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC).Equal(g.CreatedAt))

	body = `{"id": 8, "estado_devolucion": "Donada", "fecha_devolucion": "2024-06-02T10:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Equal(t, StatusDonated, g.ReturnStatus)
	require.NotNil(t, g.ReturnedAt)
	assert.True(t, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC).Equal(*g.ReturnedAt))

	assert.Empty(t, g.SkippedTimestamps())
}

func TestGarment_UnmarshalJSON_UnreadableTimestamps(t *testing.T) {
	var g Garment
	body := `{"id": 9, "nombre": "Ana", "fecha_devolucion": "pronto", "created_at": 1714560000, "updated_at": {"t": 1}}`
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Equal(t, int64(9), g.ID)
	assert.Equal(t, "Ana", g.OwnerName)
	assert.Nil(t, g.ReturnedAt)
	assert.True(t, time.Date(2024, 5, 1, 10, 40, 0, 0, time.UTC).Equal(g.CreatedAt))
	assert.True(t, g.UpdatedAt.IsZero())
	assert.Equal(t, []string{"fecha_devolucion", "updated_at"}, g.SkippedTimestamps())

	body = `{"id": 10, "created_at": "2024-05-01 12:34:56+00", "fecha_devolucion": "Wed, 01 May 2024 12:34:56 GMT"}`
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Empty(t, g.SkippedTimestamps())
	require.NotNil(t, g.ReturnedAt)
	assert.True(t, time.Date(2024, 5, 1, 12, 34, 56, 0, time.UTC).Equal(*g.ReturnedAt))
	assert.True(t, time.Date(2024, 5, 1, 12, 34, 56, 0, time.UTC).Equal(g.CreatedAt))
}

func TestGarment_WithReturnStatusDoesNotAlias(t *testing.T) {
	before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := Garment{ID: 7, ReturnStatus: StatusPendingReturn, ReturnedAt: &before}

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	patched := g.WithReturnStatus(StatusReturned, now)

	assert.Equal(t, StatusReturned, patched.ReturnStatus)
	assert.Equal(t, now, *patched.ReturnedAt)
	assert.Equal(t, StatusPendingReturn, g.ReturnStatus)
	assert.Equal(t, before, *g.ReturnedAt)

	clone := g.Clone()
	*clone.ReturnedAt = now
	assert.Equal(t, before, *g.ReturnedAt)
}

func TestDraft_Payload(t *testing.T) {
	d := Draft{}.
		Set(FieldOwnerName, "  Ana Pérez ").
		Set(FieldRUT, " 12345678-9").
		Set(FieldPhone, "+56 9 1234 5678 ").
		Set(FieldEmail, " ana@example.com").
		Set(FieldType, string(TypeSweater)).
		Set(FieldSize, string(SizeXL)).
		Set(FieldCondition, string(ConditionFair)).
		Set(FieldNotes, "  manga rota  ")

	p := d.Payload()
	assert.Equal(t, CreatePayload{
		OwnerName: "Ana Pérez",
		RUT:       "12345678-9",
		Email:     "ana@example.com",
		Type:      TypeSweater,
		Phone:     "+56 9 1234 5678",
		Size:      SizeXL,
		Condition: ConditionFair,
		Notes:     "manga rota",
	}, p)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nombre": "Ana Pérez", "rut": "12345678-9", "email": "ana@example.com",
		"tipo_prenda": "Suéter", "telefono": "+56 9 1234 5678", "talla": "XL",
		"estado": "Regular", "observaciones": "manga rota"
	}`, string(raw))

	assert.False(t, d.IsEmpty())
	assert.True(t, Draft{}.IsEmpty())
	assert.Equal(t, "+56 9 1234 5678 ", d.Get(FieldPhone))
}
