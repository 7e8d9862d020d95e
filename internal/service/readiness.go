package service

import (
	"fmt"

	"OrderRelay/internal/chain"
	"OrderRelay/internal/config"
	"OrderRelay/internal/model"
)

var allowedChainIDs = map[int64]bool{137: true, 80001: true, 80002: true}

// CheckTradingReady 实盘下单、撤单前的本地配置校验，不发起任何网络请求
func CheckTradingReady(t config.TradingConfig) error {
	switch {
	case t.PrivateKey == "":
		return model.NewConfigurationError("PRIVATE_KEY missing")
	case !chain.ValidPrivateKeyHex(t.PrivateKey):
		return model.NewConfigurationError("PRIVATE_KEY must be a 32-byte hex key prefixed with 0x (length 66)")
	case !allowedChainIDs[t.ChainID]:
		return model.NewConfigurationError(fmt.Sprintf("unexpected CHAIN_ID=%d, expected 137 (Polygon mainnet) or testnets 80001/80002", t.ChainID))
	case !chain.ValidAddress(t.ProxyAddress):
		return model.NewConfigurationError("POLYMARKET_PROXY missing/invalid (0x address from your Polymarket profile)")
	case t.SignatureType != 1 && t.SignatureType != 2:
		return model.NewConfigurationError("SIGNATURE_TYPE must be 1 (Magic/email) or 2 (browser wallet)")
	}
	return nil
}

// TradeAddress 查询挂单/成交所用地址：优先代理钱包，否则由私钥推导 EOA
func TradeAddress(t config.TradingConfig) (string, error) {
	if t.ProxyAddress != "" {
		return t.ProxyAddress, nil
	}
	if t.PrivateKey == "" {
		return "", model.NewConfigurationError("no trade address: set POLYMARKET_PROXY or PRIVATE_KEY")
	}
	addr, err := chain.AddressFromKey(t.PrivateKey)
	if err != nil {
		return "", &model.Error{Kind: model.KindConfiguration, Message: "PRIVATE_KEY is invalid", Err: err}
	}
	return addr, nil
}
