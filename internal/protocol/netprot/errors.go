package netprot

import (
	"errors"
	"fmt"

	"github.com/danmuck/collectdin/internal/protocol/tlv"
)

var (
	ErrTruncated             = tlv.ErrTruncated
	ErrInvalidPartLength     = tlv.ErrShortPartLength
	ErrMissingType           = errors.New("netprot: value part without type")
	ErrCorruptSize           = errors.New("netprot: data corrupted")
	ErrUnknownType           = errors.New("netprot: no such type")
	ErrFieldCountMismatch    = errors.New("netprot: field count mismatch")
	ErrUnknownDataSourceType = errors.New("netprot: unknown data source type")
	ErrEmit                  = errors.New("netprot: emitter write failed")

	errMapSize = errors.New("netprot: record map size drift")
)

// PartError locates a fatal decode failure within the datagram.
type PartError struct {
	Offset int
	Tag    Tag
	Err    error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("netprot: part %s at offset %d: %v", e.Tag, e.Offset, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}

// Reason returns a short stable label for err, suitable for metric labels.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrInvalidPartLength):
		return "invalid_part_length"
	case errors.Is(err, ErrMissingType):
		return "missing_type"
	case errors.Is(err, ErrCorruptSize):
		return "corrupt_size"
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, ErrFieldCountMismatch):
		return "field_count_mismatch"
	case errors.Is(err, ErrUnknownDataSourceType):
		return "unknown_ds_type"
	case errors.Is(err, ErrEmit):
		return "emit"
	default:
		return "other"
	}
}
