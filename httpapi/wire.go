package httpapi

import (
	"encoding/binary"
	"math"

	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
	"github.com/xaynet-labs/pet-coordinator/round"
)

// encodeSumDict serializes a frozen SumDict as
// [count(u32 BE)][count * (pk(32) || ephm_pk(32))], matching the
// big-endian count-prefix convention §4.5 uses for every variable-length
// wire value in this protocol.
func encodeSumDict(d round.SumDict) []byte {
	entries := d.Entries()
	out := make([]byte, 4, 4+len(entries)*64)
	binary.BigEndian.PutUint32(out, uint32(len(entries)))
	for pk, ephm := range entries {
		out = append(out, []byte(pk)...)
		out = append(out, ephm[:]...)
	}
	return out
}

// encodeSeedShares serializes one sum participant's partial seed dict as
// [count(u32 BE)][count * (update_pk(32) || seed_len(u32 BE) || seed)].
func encodeSeedShares(shares map[string][]byte) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(len(shares)))
	for updatePk, seed := range shares {
		out = append(out, []byte(updatePk)...)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(seed)))
		out = append(out, lenBuf[:]...)
		out = append(out, seed...)
	}
	return out
}

// encodeModel serializes a global model as
// [count(u32 BE)][count * float64 big-endian], the same count-prefix
// shape as the rest of this façade's binary payloads.
func encodeModel(g model.Global) []byte {
	out := make([]byte, 4+len(g.Values)*8)
	binary.BigEndian.PutUint32(out, uint32(len(g.Values)))
	for i, v := range g.Values {
		binary.BigEndian.PutUint64(out[4+i*8:4+i*8+8], math.Float64bits(v))
	}
	return out
}

// encodeLength serializes a mask length as a big-endian u64.
func encodeLength(n int) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(n))
	return out
}

// encodeScalar serializes the round's running masked scalar using the
// same mask codec as every other masked value on the wire (mask.Config's
// 4-byte descriptor, a u32 big-endian count of 1, then its one
// big-integer weight). The
// external interface table names this response "f64", but the value it
// names is still masked data, not a plaintext float, the coordinator
// never holds the plaintext scalar to serve; see DESIGN.md.
func encodeScalar(u mask.MaskUnit) []byte {
	return u.Bytes()
}
