package evm

import (
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/sha3"

	"novatrade/internal/domain"
)

// The market contract entry point, mirroring the deployed ABI:
//
//	function executeTrade(string side, uint256 amount, uint256 price) returns (bool)
const executeTradeSig = "executeTrade(string,uint256,uint256)"

var weiPerEther = new(big.Float).SetFloat64(1e18)

// selector returns the 4-byte function selector for a signature.
func selector(sig string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return h.Sum(nil)[:4]
}

// toWei scales a display amount to 18-decimal integer units.
func toWei(v float64) *big.Int {
	f := new(big.Float).SetFloat64(v)
	f.Mul(f, weiPerEther)
	wei, _ := f.Int(nil)
	return wei
}

// fromWei converts 18-decimal integer units back to a display amount.
func fromWei(wei *big.Int) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, weiPerEther)
	out, _ := f.Float64()
	return out
}

func word(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// encodeExecuteTrade ABI-encodes the executeTrade call data. The string
// argument is dynamic: its head slot holds the tail offset, the tail holds
// length plus right-padded bytes.
func encodeExecuteTrade(side domain.Side, amount, price float64) []byte {
	data := selector(executeTradeSig)

	// Head: offset to the string tail (3 words), then the two uints.
	data = append(data, word(big.NewInt(96).Bytes())...)
	data = append(data, word(toWei(amount).Bytes())...)
	data = append(data, word(toWei(price).Bytes())...)

	// Tail: string length and content padded to a word boundary.
	s := []byte(side)
	data = append(data, word(big.NewInt(int64(len(s))).Bytes())...)
	padded := make([]byte, (len(s)+31)/32*32)
	copy(padded, s)
	return append(data, padded...)
}

func hexData(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// parseHexUint parses a 0x-prefixed quantity as returned by EVM nodes.
func parseHexUint(s string) (*big.Int, bool) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 16)
	return n, ok
}
