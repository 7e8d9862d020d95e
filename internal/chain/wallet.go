package chain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ValidPrivateKeyHex 0x + 64 位十六进制
func ValidPrivateKeyHex(s string) bool {
	if len(s) != 66 || !strings.HasPrefix(s, "0x") {
		return false
	}
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == 32
}

// ValidAddress 0x + 40 位十六进制
func ValidAddress(s string) bool {
	return len(s) == 42 && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// ParsePrivateKey 解析私钥，可带或不带 0x 前缀
func ParsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	keyHex := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if keyHex == "" {
		return nil, fmt.Errorf("私钥为空")
	}
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("解析私钥失败: %w", err)
	}
	return key, nil
}

// AddressFromKey 由私钥推导 EOA 地址（checksum 格式）
func AddressFromKey(s string) (string, error) {
	key, err := ParsePrivateKey(s)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}
