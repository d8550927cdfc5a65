package gateway

import (
	"errors"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/cnst"
)

var (
	ErrUnknownOperationType = errors.New("unknown operation type")
	ErrNegativeIndex        = errors.New("operation index must be non-negative")
	ErrMissingText          = errors.New("insert operation requires text")
	ErrInvalidLength        = errors.New("delete operation requires a non-negative length")
)

// Operation is a minimal edit instruction applied directly to a document's
// text by index. Text and Length are pointers so the broadcast payload
// carries exactly the fields the sender supplied.
type Operation struct {
	Type   string  `json:"type"`
	Index  int     `json:"index"`
	Text   *string `json:"text,omitempty"`
	Length *int    `json:"length,omitempty"`
}

// Validate rejects operations whose shape cannot be applied. Out-of-range
// indexes are not a validation error; Apply clamps them.
func (op *Operation) Validate() error {
	if op.Index < 0 {
		return ErrNegativeIndex
	}
	switch op.Type {
	case cnst.OpInsert:
		if op.Text == nil {
			return ErrMissingText
		}
	case cnst.OpDelete:
		if op.Length == nil || *op.Length < 0 {
			return ErrInvalidLength
		}
	case cnst.OpRetain:
	default:
		return ErrUnknownOperationType
	}
	return nil
}

// Apply splices a validated operation into content and returns the result.
// Indexes are measured in runes and clamped to the buffer bounds; a delete
// running past the end truncates. Retain leaves the buffer untouched.
func Apply(content string, op Operation) string {
	switch op.Type {
	case cnst.OpInsert:
		r := []rune(content)
		i := clamp(op.Index, len(r))
		return string(r[:i]) + *op.Text + string(r[i:])
	case cnst.OpDelete:
		r := []rune(content)
		i := clamp(op.Index, len(r))
		// Sum after clamping; index+length can overflow for extreme
		// but well-formed payloads.
		end := i + *op.Length
		if end < i || end > len(r) {
			end = len(r)
		}
		return string(r[:i]) + string(r[end:])
	default:
		return content
	}
}

func clamp(i, max int) int {
	if i > max {
		return max
	}
	return i
}
