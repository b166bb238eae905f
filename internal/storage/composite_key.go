package storage

import "bytes"

// ColTotLen returns the total fixed-width encoded size of a composite key
// over cols. Every column — including Varchar — has a fixed encoded width
// in this storage core, since both index keys and heap records are
// fixed-length: Varchar values are zero-padded or truncated to Size bytes
// rather than length-prefixed.
func ColTotLen(cols []Column) uint32 {
	var total uint32
	for _, c := range cols {
		total += c.FixedSize()
	}
	return total
}

// MarshalKey encodes values as a fixed-width composite key into buf, which
// must be at least ColTotLen(cols) bytes.
func MarshalKey(cols []Column, values []any, buf []byte) {
	offset := uint32(0)
	for i, c := range cols {
		width := c.FixedSize()
		switch c.Kind {
		case Boolean:
			marshalBool(buf, values[i].(bool), offset)
		case Int4:
			marshalInt32(buf, values[i].(int32), offset)
		case Int8:
			marshalInt64(buf, values[i].(int64), offset)
		case Real:
			marshalFloat32(buf, values[i].(float32), offset)
		case Double:
			marshalFloat64(buf, values[i].(float64), offset)
		case Varchar:
			s := []byte(values[i].(string))
			n := copy(buf[offset:offset+width], s)
			for k := n; k < int(width); k++ {
				buf[offset+uint32(k)] = 0
			}
		}
		offset += width
	}
}

// UnmarshalKey decodes a fixed-width composite key encoded by MarshalKey.
func UnmarshalKey(cols []Column, buf []byte) []any {
	values := make([]any, len(cols))
	offset := uint32(0)
	for i, c := range cols {
		width := c.FixedSize()
		switch c.Kind {
		case Boolean:
			values[i] = unmarshalBool(buf, offset)
		case Int4:
			values[i] = unmarshalInt32(buf, offset)
		case Int8:
			values[i] = unmarshalInt64(buf, offset)
		case Real:
			values[i] = unmarshalFloat32(buf, offset)
		case Double:
			values[i] = unmarshalFloat64(buf, offset)
		case Varchar:
			raw := buf[offset : offset+width]
			end := len(raw)
			for end > 0 && raw[end-1] == 0 {
				end--
			}
			values[i] = string(raw[:end])
		}
		offset += width
	}
	return values
}

// CompareKeys implements the ix_compare contract: lexicographic comparison
// over the composite key, column by column in declaration order, using each
// column's type to decide how its bytes are compared. Byte-oriented
// (Varchar) columns compare with memcmp semantics; every other type decodes
// and compares numerically so that little-endian encoding never inverts the
// order. Returns <0, 0, >0 the way bytes.Compare does.
func CompareKeys(cols []Column, a, b []byte) int {
	offset := uint32(0)
	for _, c := range cols {
		width := c.FixedSize()
		ca, cb := a[offset:offset+width], b[offset:offset+width]

		var cmp int
		switch c.Kind {
		case Boolean:
			va, vb := unmarshalBool(ca, 0), unmarshalBool(cb, 0)
			cmp = boolCompare(va, vb)
		case Int4:
			va, vb := unmarshalInt32(ca, 0), unmarshalInt32(cb, 0)
			cmp = int32Compare(va, vb)
		case Int8:
			va, vb := unmarshalInt64(ca, 0), unmarshalInt64(cb, 0)
			cmp = int64Compare(va, vb)
		case Real:
			va, vb := unmarshalFloat32(ca, 0), unmarshalFloat32(cb, 0)
			cmp = float64Compare(float64(va), float64(vb))
		case Double:
			va, vb := unmarshalFloat64(ca, 0), unmarshalFloat64(cb, 0)
			cmp = float64Compare(va, vb)
		case Varchar:
			cmp = bytes.Compare(ca, cb)
		}

		if cmp != 0 {
			return cmp
		}
		offset += width
	}
	return 0
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func int32Compare(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func int64Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func float64Compare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
