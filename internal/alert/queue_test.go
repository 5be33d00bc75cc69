package alert

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueue_ShowOverwrites(t *testing.T) {
	q := New(0)

	q.Show("primero", SeverityInfo)
	q.Show("segundo", SeverityError)

	assert.Equal(t, Alert{Open: true, Message: "segundo", Severity: SeverityError}, q.Current())
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	var mu sync.Mutex
	var seen []Alert
	q := New(0, WithObserver(func(a Alert) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, a)
	}))

	q.Show("hola", SeverityInfo)
	q.Close(ReasonExplicit)
	q.Close(ReasonExplicit)

	assert.False(t, q.Current().Open)
	assert.Equal(t, "hola", q.Current().Message)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 2, "second close must not notify")
}

func TestQueue_ClickAwayIsIgnored(t *testing.T) {
	q := New(0)
	q.Show("No se pudo conectar con el servidor", SeverityError)

	q.Close(ReasonClickAway)

	assert.True(t, q.Current().Open)
}

func TestQueue_AutoDismiss(t *testing.T) {
	q := New(20 * time.Millisecond)
	q.Show("se va sola", SeveritySuccess)

	assert.Eventually(t, func() bool { return !q.Current().Open }, time.Second, 5*time.Millisecond)
}

func TestQueue_StaleTimerDoesNotCloseNewerAlert(t *testing.T) {
	q := New(200 * time.Millisecond)
	q.Show("vieja", SeverityInfo)
	time.Sleep(120 * time.Millisecond)
	q.Show("nueva", SeverityWarning)

	// The first timer would have fired by now; the second has not.
	time.Sleep(120 * time.Millisecond)
	cur := q.Current()
	assert.True(t, cur.Open)
	assert.Equal(t, "nueva", cur.Message)

	assert.Eventually(t, func() bool { return !q.Current().Open }, time.Second, 5*time.Millisecond)
}

func TestSeverity_Title(t *testing.T) {
	assert.Equal(t, "¡Éxito!", SeveritySuccess.Title())
	assert.Equal(t, "Error", SeverityError.Title())
	assert.Equal(t, "Advertencia", SeverityWarning.Title())
	assert.Equal(t, "Información", SeverityInfo.Title())
}
