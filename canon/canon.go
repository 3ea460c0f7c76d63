// Package canon provides canonical JSON serialization and BLAKE3 content
// hashing. Every value hashed here is first re-marshaled through a
// canonical form with object keys sorted lexicographically at every
// nesting level, so two values that differ only in map key insertion order
// hash identically, and any value change changes the hash.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// CanonicalJSON produces the canonical JSON byte string for v: object keys
// sorted at every depth, no insignificant whitespace, arrays preserve
// order, integers print without a decimal point.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canon: marshal: %w", err)
	}

	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canon: decode for canonicalization: %w", err)
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HashCanonical returns the 32-byte BLAKE3 digest of the canonical JSON
// encoding of v.
func HashCanonical(v any) ([32]byte, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256(data), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		buf.WriteString(val.String())
		return nil
	case string:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("canon: encode string: %w", err)
		}
		buf.Write(encoded)
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("canon: encode key: %w", err)
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("canon: unsupported value type %T", v)
	}
}
