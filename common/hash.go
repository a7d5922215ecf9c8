package common

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	ethereumCommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

// Hash is a custom type based on Ethereum's common.Hash
type Hash ethereumCommon.Hash

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte {
	return ethereumCommon.Hash(h).Bytes()
}

// Hex returns the 0x-prefixed hexadecimal representation of the hash.
func (h Hash) Hex() string {
	return ethereumCommon.Hash(h).Hex()
}

func (h Hash) String() string {
	return h.Hex()
}

func (h Hash) String_short() string {
	hex := h.Hex()
	return fmt.Sprintf("%s..%s", hex[2:6], hex[len(hex)-4:])
}

// MarshalJSON encodes the hash as a hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Hex())
}

// UnmarshalJSON decodes a hex string into the hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	*h = HexToHash(hexStr)
	return nil
}

// BytesToHash converts a byte slice to a Hash.
func BytesToHash(b []byte) Hash {
	return Hash(ethereumCommon.BytesToHash(b))
}

func HexToHash(s string) Hash {
	return Hash(ethereumCommon.HexToHash(s))
}

// ComputeHash computes the BLAKE2b-256 hash of the given data
func ComputeHash(data []byte) []byte {
	hash := blake2b.Sum256(data)
	return hash[:]
}

func Blake2Hash(data []byte) Hash {
	return BytesToHash(ComputeHash(data))
}

func Uint64ToBytes(val uint64) []byte {
	bytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(bytes, val)
	return bytes
}

// ProgramHash identifies a program by the BLAKE2b hash of its cells, each encoded
// as 8 little-endian bytes.
func ProgramHash(cells []int64) Hash {
	buf := make([]byte, 0, 8*len(cells))
	for _, c := range cells {
		buf = append(buf, Uint64ToBytes(uint64(c))...)
	}
	return Blake2Hash(buf)
}
