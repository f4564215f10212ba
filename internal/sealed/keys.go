package sealed

import (
	"fmt"
	"os"
	"strings"

	"onchainrps/internal/orpscrypto"
)

// LoadOracleKeyFile reads a hex-encoded oracle secret key.
func LoadOracleKeyFile(path string) (*Oracle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOracleKeyHex(strings.TrimSpace(string(raw)))
}

func ParseOracleKeyHex(s string) (*Oracle, error) {
	b, err := orpscrypto.HexToBytes(s)
	if err != nil {
		return nil, fmt.Errorf("oracle key: %w", err)
	}
	return NewOracle(b)
}

// WriteOracleKeyFile stores the secret with owner-only permissions.
func WriteOracleKeyFile(path string, o *Oracle) error {
	return os.WriteFile(path, []byte(orpscrypto.BytesToHex(o.SecretKey())+"\n"), 0o600)
}

func ParsePublicKeyHex(s string) ([]byte, error) {
	b, err := orpscrypto.HexToBytes(s)
	if err != nil {
		return nil, fmt.Errorf("oracle pk: %w", err)
	}
	if _, err := orpscrypto.PointFromBytesCanonical(b); err != nil {
		return nil, fmt.Errorf("oracle pk: %w", err)
	}
	return b, nil
}
