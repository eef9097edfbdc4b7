package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoc_StringOr(t *testing.T) {
	d := Doc{
		"title":   "",
		"subject": "件名",
		"count":   int64(3),
	}

	assert.Equal(t, "件名", d.StringOr("（未設定）", "title", "subject"))
	assert.Equal(t, "（未設定）", d.StringOr("（未設定）", "missing"))
	assert.Equal(t, "（未設定）", d.StringOr("（未設定）", "count"), "numbers are not coerced to strings")
}

func TestDoc_Bool(t *testing.T) {
	d := Doc{"on": true, "off": false, "text": "true", "one": int64(1)}

	v, ok := d.Bool("on")
	assert.True(t, v)
	assert.True(t, ok)

	v, ok = d.Bool("off")
	assert.False(t, v)
	assert.True(t, ok)

	_, ok = d.Bool("missing")
	assert.False(t, ok)

	assert.False(t, d.Flag("text"))
	assert.False(t, d.Flag("one"))
}

func TestDoc_Int(t *testing.T) {
	d := Doc{"a": int64(5), "b": float64(7), "c": 1.5, "d": "9"}

	v, ok := d.Int("a")
	assert.True(t, ok)
	assert.Equal(t, int64(5), v)

	v, ok = d.Int("b")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = d.Int("c")
	assert.False(t, ok)
	_, ok = d.Int("d")
	assert.False(t, ok)

	f, ok := d.Number("c")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)
}

func TestDoc_Map(t *testing.T) {
	d := Doc{
		"category": map[string]interface{}{"id": "club", "name": "サークル"},
		"typed":    Doc{"id": "x"},
		"scalar":   "nope",
	}

	assert.Equal(t, "サークル", d.Map("category").StringOr("", "name"))
	assert.Equal(t, "x", d.Map("typed").StringOr("", "id"))
	assert.Empty(t, d.Map("scalar"))
	assert.Empty(t, d.Map("missing"))
}

func TestDocumentEvent_Current(t *testing.T) {
	var nilEvent *DocumentEvent
	assert.Nil(t, nilEvent.Current())

	ev := &DocumentEvent{}
	assert.Nil(t, ev.Current(), "deleted concurrently")
	assert.Empty(t, ev.Previous())

	ev.After = &Snapshot{Name: "projects/p/databases/(default)/documents/users/u1"}
	assert.NotNil(t, ev.Current())
	assert.Equal(t, "u1", ev.After.ID())
}
