package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/wbrown/fieldvalues/values"
)

// ErrInvalidKey is returned for document keys that are not a
// collection/document path with an even number of non-empty segments
var ErrInvalidKey = errors.New("invalid document key")

// Document is a cached document snapshot
type Document struct {
	Key        string // e.g. "rooms/eros/messages/1"
	Fields     values.MapValue
	UpdateTime values.Timestamp
}

// Collection returns the path of the collection holding the document
func (d *Document) Collection() string {
	i := strings.LastIndexByte(d.Key, '/')
	if i < 0 {
		return ""
	}
	return d.Key[:i]
}

// ID returns the last segment of the key
func (d *Document) ID() string {
	return d.Key[strings.LastIndexByte(d.Key, '/')+1:]
}

// ValidateKey checks that key names a document
func ValidateKey(key string) error {
	segments := strings.Split(key, "/")
	if len(segments)%2 != 0 {
		return fmt.Errorf("%w: %q has an odd number of segments", ErrInvalidKey, key)
	}
	for _, s := range segments {
		if s == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidKey, key)
		}
	}
	return nil
}

// ValidateCollection checks that path names a collection
func ValidateCollection(path string) error {
	segments := strings.Split(path, "/")
	if len(segments)%2 != 1 {
		return fmt.Errorf("%w: %q is not a collection path", ErrInvalidKey, path)
	}
	for _, s := range segments {
		if s == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidKey, path)
		}
	}
	return nil
}

// Bytes serializes the update time and fields. The key is stored in the
// badger key, not here.
func (d *Document) Bytes() ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = appendTimestamp(buf, d.UpdateTime)
	return AppendValue(buf, d.Fields)
}

// DocumentFromBytes deserializes a document written by Bytes
func DocumentFromBytes(key string, data []byte) (*Document, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: document %s is truncated", ErrCorruptValue, key)
	}
	updateTime := values.Timestamp{
		Seconds: int64(binary.BigEndian.Uint64(data[:8])),
		Nanos:   int32(binary.BigEndian.Uint32(data[8:12])),
	}
	v, err := DecodeValue(data[12:])
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", key, err)
	}
	fields, ok := v.(values.MapValue)
	if !ok {
		return nil, fmt.Errorf("%w: document %s fields are a %s", ErrCorruptValue, key, v.Type())
	}
	return &Document{Key: key, Fields: fields, UpdateTime: updateTime}, nil
}
