package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/wbrown/fieldvalues/values"
)

// MaxNestingDepth bounds how deeply arrays and maps may nest in an
// encoded value
const MaxNestingDepth = 100

var (
	// ErrNestingTooDeep is returned when a value nests arrays and maps
	// beyond MaxNestingDepth
	ErrNestingTooDeep = errors.New("value nesting too deep")

	// ErrCorruptValue is returned when encoded bytes cannot be decoded
	ErrCorruptValue = errors.New("corrupt encoded value")
)

// The encoding is a type byte (values.ValueType) followed by a payload:
//
//	null             -
//	boolean          1 byte
//	integer          8 bytes big-endian
//	double           8 bytes big-endian IEEE-754 bits
//	timestamp        8 bytes seconds, 4 bytes nanos
//	server timestamp timestamp, 1 byte flag, previous value if flag is 1
//	string, blob     uvarint length, bytes
//	reference        three length-prefixed strings: project, database, path
//	geo point        two doubles
//	array            uvarint count, values
//	map              uvarint count, (length-prefixed key, value) in key order
//
// It is private to the cache and carries no version.

// EncodeValue serializes v
func EncodeValue(v values.Value) ([]byte, error) {
	return AppendValue(nil, v)
}

// AppendValue appends the encoding of v to dst
func AppendValue(dst []byte, v values.Value) ([]byte, error) {
	return appendValue(dst, v, 0)
}

func appendValue(dst []byte, v values.Value, depth int) ([]byte, error) {
	if depth > MaxNestingDepth {
		return nil, ErrNestingTooDeep
	}

	dst = append(dst, byte(v.Type()))
	switch val := v.(type) {
	case values.NullValue:
		return dst, nil
	case values.BooleanValue:
		if val {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case values.IntegerValue:
		return binary.BigEndian.AppendUint64(dst, uint64(val)), nil
	case values.DoubleValue:
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(float64(val))), nil
	case values.TimestampValue:
		return appendTimestamp(dst, val.Timestamp), nil
	case values.ServerTimestampValue:
		dst = appendTimestamp(dst, val.LocalWriteTime)
		if val.Previous == nil {
			return append(dst, 0), nil
		}
		return appendValue(append(dst, 1), val.Previous, depth+1)
	case values.StringValue:
		return appendString(dst, string(val)), nil
	case values.BlobValue:
		return appendString(dst, string(val.Bytes())), nil
	case values.ReferenceValue:
		dst = appendString(dst, val.Database.Project)
		dst = appendString(dst, val.Database.Database)
		return appendString(dst, val.Path), nil
	case values.GeoPointValue:
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(val.Latitude))
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(val.Longitude)), nil
	case values.ArrayValue:
		dst = binary.AppendUvarint(dst, uint64(val.Len()))
		var err error
		for i := 0; i < val.Len(); i++ {
			if dst, err = appendValue(dst, val.At(i), depth+1); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case values.MapValue:
		keys := val.Keys()
		dst = binary.AppendUvarint(dst, uint64(len(keys)))
		var err error
		for _, k := range keys {
			dst = appendString(dst, k)
			field, _ := val.Get(k)
			if dst, err = appendValue(dst, field, depth+1); err != nil {
				return nil, err
			}
		}
		return dst, nil
	default:
		panic(fmt.Sprintf("cannot encode value type: %T", v))
	}
}

func appendTimestamp(dst []byte, ts values.Timestamp) []byte {
	dst = binary.BigEndian.AppendUint64(dst, uint64(ts.Seconds))
	return binary.BigEndian.AppendUint32(dst, uint32(ts.Nanos))
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// DecodeValue deserializes a value written by EncodeValue. The whole input
// must be consumed.
func DecodeValue(data []byte) (values.Value, error) {
	d := decoder{data: data}
	v, err := d.readValue(0)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptValue, len(d.data)-d.pos)
	}
	return v, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at offset %d", ErrCorruptValue, fmt.Sprintf(format, args...), d.pos)
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, d.corrupt("need %d bytes, have %d", n, len(d.data)-d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) readUint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *decoder) readUvarint() (uint64, error) {
	n, size := binary.Uvarint(d.data[d.pos:])
	if size <= 0 {
		return 0, d.corrupt("invalid length")
	}
	d.pos += size
	return n, nil
}

func (d *decoder) readString() (string, error) {
	n, err := d.readUvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(len(d.data)-d.pos) {
		return "", d.corrupt("length %d exceeds input", n)
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) readTimestamp() (values.Timestamp, error) {
	b, err := d.take(12)
	if err != nil {
		return values.Timestamp{}, err
	}
	return values.Timestamp{
		Seconds: int64(binary.BigEndian.Uint64(b[:8])),
		Nanos:   int32(binary.BigEndian.Uint32(b[8:])),
	}, nil
}

// readCount reads an element count, rejecting counts larger than the bytes
// left since every element takes at least one byte
func (d *decoder) readCount() (int, error) {
	n, err := d.readUvarint()
	if err != nil {
		return 0, err
	}
	if n > uint64(len(d.data)-d.pos) {
		return 0, d.corrupt("count %d exceeds input", n)
	}
	return int(n), nil
}

func (d *decoder) readValue(depth int) (values.Value, error) {
	if depth > MaxNestingDepth {
		return nil, ErrNestingTooDeep
	}

	tag, err := d.take(1)
	if err != nil {
		return nil, err
	}

	switch values.ValueType(tag[0]) {
	case values.TypeNull:
		return values.Null(), nil
	case values.TypeBoolean:
		b, err := d.take(1)
		if err != nil {
			return nil, err
		}
		if b[0] > 1 {
			return nil, d.corrupt("invalid boolean %d", b[0])
		}
		return values.Bool(b[0] == 1), nil
	case values.TypeInteger:
		u, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		return values.Int(int64(u)), nil
	case values.TypeDouble:
		u, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		return values.FloatBits(u), nil
	case values.TypeTimestamp:
		ts, err := d.readTimestamp()
		if err != nil {
			return nil, err
		}
		return values.Time(ts), nil
	case values.TypeServerTimestamp:
		ts, err := d.readTimestamp()
		if err != nil {
			return nil, err
		}
		flag, err := d.take(1)
		if err != nil {
			return nil, err
		}
		switch flag[0] {
		case 0:
			return values.ServerTime(ts, nil), nil
		case 1:
			prev, err := d.readValue(depth + 1)
			if err != nil {
				return nil, err
			}
			return values.ServerTime(ts, prev), nil
		default:
			return nil, d.corrupt("invalid previous value flag %d", flag[0])
		}
	case values.TypeString:
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		return values.String(s), nil
	case values.TypeBlob:
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		return values.Bytes([]byte(s)), nil
	case values.TypeReference:
		var parts [3]string
		for i := range parts {
			if parts[i], err = d.readString(); err != nil {
				return nil, err
			}
		}
		return values.Ref(values.DatabaseID{Project: parts[0], Database: parts[1]}, parts[2]), nil
	case values.TypeGeoPoint:
		lat, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		lng, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		return values.GeoPointValue{Latitude: math.Float64frombits(lat), Longitude: math.Float64frombits(lng)}, nil
	case values.TypeArray:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		elems := make([]values.Value, n)
		for i := range elems {
			if elems[i], err = d.readValue(depth + 1); err != nil {
				return nil, err
			}
		}
		return values.Array(elems...), nil
	case values.TypeMap:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		entries := make([]values.Entry, n)
		for i := range entries {
			if entries[i].Key, err = d.readString(); err != nil {
				return nil, err
			}
			if entries[i].Value, err = d.readValue(depth + 1); err != nil {
				return nil, err
			}
		}
		m, err := values.MapFromEntries(entries...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptValue, err)
		}
		return m, nil
	default:
		return nil, d.corrupt("unknown value type %d", tag[0])
	}
}
