package chaintypes

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// idListFieldNumber is the single field number used when an ID list is
// encoded on its own (parent-id lists, ordered-tx-id lists, fork-drop
// lists): a repeated length-delimited bytes field, the same wire shape the
// teacher's generated p2p messages use for repeated id fields.
const idListFieldNumber protowire.Number = 1

// EncodeIDList serializes a list of IDs as a repeated length-delimited
// bytes field, letting a peer-to-peer transport frame a parent-id or
// ordered-tx-id list without a full protobuf message definition.
func EncodeIDList(ids []ID) []byte {
	var out []byte
	for _, id := range ids {
		out = protowire.AppendTag(out, idListFieldNumber, protowire.BytesType)
		out = protowire.AppendBytes(out, id[:])
	}
	return out
}

// DecodeIDList parses bytes produced by EncodeIDList back into an ordered
// list of IDs, rejecting any entry whose length is not exactly IDLen.
func DecodeIDList(data []byte) ([]ID, error) {
	var ids []ID
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("chaintypes: decode id list: %w", protowire.ParseError(n))
		}
		data = data[n:]
		if num != idListFieldNumber || typ != protowire.BytesType {
			return nil, fmt.Errorf("chaintypes: decode id list: unexpected field %d type %d", num, typ)
		}
		raw, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("chaintypes: decode id list: %w", protowire.ParseError(n))
		}
		data = data[n:]
		if len(raw) != IDLen {
			return nil, fmt.Errorf("chaintypes: decode id list: entry has length %d, want %d", len(raw), IDLen)
		}
		var id ID
		copy(id[:], raw)
		ids = append(ids, id)
	}
	return ids, nil
}
