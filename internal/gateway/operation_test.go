package gateway

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/cnst"
)

func TestApplyInsert(t *testing.T) {
	cases := []struct {
		name    string
		content string
		index   int
		text    string
		want    string
	}{
		{"append", "hello", 5, " world", "hello world"},
		{"prepend", "world", 0, "hello ", "hello world"},
		{"middle", "held", 3, "ral", "heralld"},
		{"empty buffer", "", 0, "x", "x"},
		{"index past end clamps", "ab", 10, "c", "abc"},
		{"unicode runes", "héllo", 2, "ý", "héýllo"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Apply(c.content, Operation{Type: cnst.OpInsert, Index: c.index, Text: strp(c.text)})
			assert.Equal(t, c.want, got)
		})
	}
}

func TestApplyDelete(t *testing.T) {
	cases := []struct {
		name    string
		content string
		index   int
		length  int
		want    string
	}{
		{"suffix", "hello world", 5, 6, "hello"},
		{"prefix", "hello world", 0, 6, "world"},
		{"middle", "hello world", 4, 4, "hellrld"},
		{"zero length", "hello", 2, 0, "hello"},
		{"length past end truncates", "hello", 3, 99, "hel"},
		{"index past end", "hello", 99, 1, "hello"},
		{"max index does not overflow", "hello", math.MaxInt, 1, "hello"},
		{"max length does not overflow", "hello", 2, math.MaxInt, "he"},
		{"unicode runes", "héllo", 1, 1, "hllo"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Apply(c.content, Operation{Type: cnst.OpDelete, Index: c.index, Length: intp(c.length)})
			assert.Equal(t, c.want, got)
		})
	}
}

func TestApplyRetain(t *testing.T) {
	got := Apply("hello", Operation{Type: cnst.OpRetain, Index: 3})
	assert.Equal(t, "hello", got)
}

func TestOperationValidate(t *testing.T) {
	assert.NoError(t, (&Operation{Type: cnst.OpInsert, Index: 0, Text: strp("x")}).Validate())
	assert.NoError(t, (&Operation{Type: cnst.OpDelete, Index: 0, Length: intp(1)}).Validate())
	assert.NoError(t, (&Operation{Type: cnst.OpRetain, Index: 0}).Validate())

	assert.ErrorIs(t, (&Operation{Type: cnst.OpInsert, Index: -1, Text: strp("x")}).Validate(), ErrNegativeIndex)
	assert.ErrorIs(t, (&Operation{Type: cnst.OpInsert, Index: 0}).Validate(), ErrMissingText)
	assert.ErrorIs(t, (&Operation{Type: cnst.OpDelete, Index: 0}).Validate(), ErrInvalidLength)
	assert.ErrorIs(t, (&Operation{Type: cnst.OpDelete, Index: 0, Length: intp(-1)}).Validate(), ErrInvalidLength)
	assert.ErrorIs(t, (&Operation{Type: "sort", Index: 0}).Validate(), ErrUnknownOperationType)
}
