package tableadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/MKhiriev/go-outbox-sync/models"
)

// Codec converts one column value between the local and the wire shape.
// Both directions pass nil through unchanged.
type Codec interface {
	ToWire(v any) (any, error)
	FromWire(v any) (any, error)
}

// Column maps one local column to its wire counterpart.
type Column struct {
	Local string
	Wire  string
	Codec Codec
}

var (
	// Text keeps strings as strings.
	Text Codec = textCodec{}
	// Integer keeps int64 values; JSON numbers are narrowed back to int64.
	Integer Codec = integerCodec{}
	// Real keeps float64 values.
	Real Codec = realCodec{}
	// Bool maps local 0/1 integers to wire booleans.
	Bool Codec = boolCodec{}
	// UnixMillisISO maps local unix milliseconds to wire ISO-8601 strings.
	UnixMillisISO Codec = unixMillisCodec{}
	// JSONText maps local JSON text to decoded wire values (arrays, objects).
	// Text coming back from the wire is compact with sorted object keys.
	JSONText Codec = jsonTextCodec{}
)

type textCodec struct{}

func (textCodec) ToWire(v any) (any, error)   { return asText(v) }
func (textCodec) FromWire(v any) (any, error) { return asText(v) }

func asText(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return nil, fmt.Errorf("%w: expected text, got %T", ErrInvalidValue, v)
	}
}

type integerCodec struct{}

func (integerCodec) ToWire(v any) (any, error)   { return asInt(v) }
func (integerCodec) FromWire(v any) (any, error) { return asInt(v) }

func asInt(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, t)
		}
		if t < math.MinInt64 || t >= math.MaxInt64 {
			return nil, fmt.Errorf("%w: %v overflows int64", ErrInvalidValue, t)
		}
		return int64(t), nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("%w: expected integer, got %T", ErrInvalidValue, v)
	}
}

type realCodec struct{}

func (realCodec) ToWire(v any) (any, error)   { return asFloat(v) }
func (realCodec) FromWire(v any) (any, error) { return asFloat(v) }

func asFloat(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: expected real, got %T", ErrInvalidValue, v)
	}
}

type boolCodec struct{}

func (boolCodec) ToWire(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return t, nil
	}
	i, err := asInt(v)
	if err != nil {
		return nil, err
	}
	switch i.(int64) {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return nil, fmt.Errorf("%w: boolean flag must be 0 or 1, got %d", ErrInvalidValue, i)
	}
}

func (boolCodec) FromWire(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if t {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("%w: expected boolean, got %T", ErrInvalidValue, v)
	}
}

type unixMillisCodec struct{}

func (unixMillisCodec) ToWire(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if t, ok := v.(time.Time); ok {
		return models.FormatTimestamp(t), nil
	}
	ms, err := asInt(v)
	if err != nil {
		return nil, err
	}
	return models.FormatTimestamp(time.UnixMilli(ms.(int64))), nil
}

func (unixMillisCodec) FromWire(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		ts, err := models.ParseTimestamp(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		return ts.UnixMilli(), nil
	default:
		return nil, fmt.Errorf("%w: expected timestamp string, got %T", ErrInvalidValue, v)
	}
}

type jsonTextCodec struct{}

func (jsonTextCodec) ToWire(v any) (any, error) {
	text, err := asText(v)
	if err != nil || text == nil {
		return text, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text.(string))))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidValue)
	}
	return decoded, nil
}

func (jsonTextCodec) FromWire(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return string(b), nil
}
