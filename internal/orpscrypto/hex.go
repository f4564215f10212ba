package orpscrypto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexToBytes accepts an optional 0x prefix and either case.
func HexToBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("hex: empty string")
	}
	ss := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(ss)%2 != 0 {
		return nil, fmt.Errorf("hex: odd length")
	}
	b, err := hex.DecodeString(ss)
	if err != nil {
		return nil, fmt.Errorf("hex: %w", err)
	}
	return b, nil
}

func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
