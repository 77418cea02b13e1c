// Package codec implements L85, a lexicographically sortable Base85 text
// encoding for arbitrary bytes.
//
// Encoded strings sort in the same order as the bytes they encode when the
// inputs have equal length, and the alphabet contains neither '"' nor '\\',
// so an encoding can be embedded between double quotes without escaping.
// Blob payloads inside canonical ids are written this way.
package codec

import (
	"errors"
	"fmt"
	"math"
)

// Alphabet is the 85-character L85 alphabet, in ascending byte order
const Alphabet = "!$%&()+,-./" +
	"0123456789:;<=>@" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ[]_`" +
	"abcdefghijklmnopqrstuvwxyz{}"

var (
	// decodeTable maps an alphabet byte to its digit value plus one; zero
	// marks bytes outside the alphabet
	decodeTable [256]byte

	// ErrInvalidCharacter indicates an invalid character in input
	ErrInvalidCharacter = errors.New("invalid L85 character")

	// ErrIncompleteGroup indicates a trailing group of a single character,
	// which no input length can produce
	ErrIncompleteGroup = errors.New("invalid L85 encoding: incomplete group")

	// ErrGroupOverflow indicates a group whose value does not fit in 32 bits
	ErrGroupOverflow = errors.New("invalid L85 encoding: group overflows 32 bits")
)

func init() {
	for i := 0; i < len(Alphabet); i++ {
		decodeTable[Alphabet[i]] = byte(i + 1)
	}
}

// EncodedLen returns the length of the encoding of n bytes.
// Each full 4-byte group becomes 5 characters; a trailing group of r bytes
// becomes r+1 characters.
func EncodedLen(n int) int {
	l := n / 4 * 5
	if r := n % 4; r > 0 {
		l += r + 1
	}
	return l
}

// Encode encodes src as an L85 string
func Encode(src []byte) string {
	return string(Append(make([]byte, 0, EncodedLen(len(src))), src))
}

// Append appends the L85 encoding of src to dst and returns the extended
// buffer
func Append(dst, src []byte) []byte {
	for len(src) >= 4 {
		dst = appendGroup(dst, uint32(src[0])<<24|uint32(src[1])<<16|uint32(src[2])<<8|uint32(src[3]), 5)
		src = src[4:]
	}
	if r := len(src); r > 0 {
		var padded [4]byte
		copy(padded[:], src)
		v := uint32(padded[0])<<24 | uint32(padded[1])<<16 | uint32(padded[2])<<8 | uint32(padded[3])
		dst = appendGroup(dst, v, r+1)
	}
	return dst
}

// appendGroup writes the leading n of the five base-85 digits of v
func appendGroup(dst []byte, v uint32, n int) []byte {
	var digits [5]byte
	for j := 4; j >= 0; j-- {
		digits[j] = Alphabet[v%85]
		v /= 85
	}
	return append(dst, digits[:n]...)
}

// Decode decodes an L85 string back to bytes
func Decode(src string) ([]byte, error) {
	for i := 0; i < len(src); i++ {
		if decodeTable[src[i]] == 0 {
			return nil, fmt.Errorf("%w at position %d: %q", ErrInvalidCharacter, i, src[i])
		}
	}
	if len(src)%5 == 1 {
		return nil, ErrIncompleteGroup
	}

	result := make([]byte, 0, len(src)/5*4+3)
	for len(src) > 0 {
		n := min(len(src), 5)
		v := uint64(0)
		for j := 0; j < 5; j++ {
			// Missing trailing digits pad with the highest digit, so the
			// truncated group rounds up to the bytes it was cut from
			digit := uint64(84)
			if j < n {
				digit = uint64(decodeTable[src[j]] - 1)
			}
			v = v*85 + digit
		}
		if v > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %q", ErrGroupOverflow, src[:n])
		}
		group := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
		result = append(result, group[:n-1]...)
		src = src[n:]
	}
	return result, nil
}
