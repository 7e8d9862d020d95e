package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

const (
	usdcDecimals   = 6
	nativeDecimals = 18
)

// ERC20 balanceOf 最小 ABI
const erc20BalanceOfABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[
		{"name":"account","type":"address"}
	],"outputs":[{"name":"","type":"uint256"}]}
]`

// balanceBackend ethclient 中用到的子集
type balanceBackend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Balance 单个地址的余额快照
type Balance struct {
	Label   string
	Address string
	Native  decimal.Decimal // MATIC/POL
	USDC    decimal.Decimal // USDC.e
}

// BalanceReader 查询原生币与 USDC.e 余额
type BalanceReader struct {
	backend balanceBackend
	closer  func()
	usdc    common.Address
	erc20   abi.ABI
}

// DialBalanceReader 连接 RPC
func DialBalanceReader(ctx context.Context, rpcURL, usdcAddr string) (*BalanceReader, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc_url 必填")
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	r, err := newBalanceReader(client, usdcAddr)
	if err != nil {
		client.Close()
		return nil, err
	}
	r.closer = client.Close
	return r, nil
}

func newBalanceReader(backend balanceBackend, usdcAddr string) (*BalanceReader, error) {
	if !common.IsHexAddress(usdcAddr) {
		return nil, fmt.Errorf("usdc 合约地址无效: %q", usdcAddr)
	}
	parsed, err := abi.JSON(strings.NewReader(erc20BalanceOfABI))
	if err != nil {
		return nil, err
	}
	return &BalanceReader{backend: backend, usdc: common.HexToAddress(usdcAddr), erc20: parsed}, nil
}

func (r *BalanceReader) Close() {
	if r.closer != nil {
		r.closer()
	}
}

// Native 最新区块原生币余额
func (r *BalanceReader) Native(ctx context.Context, addr string) (decimal.Decimal, error) {
	wei, err := r.backend.BalanceAt(ctx, common.HexToAddress(addr), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("查询原生币余额失败: %w", err)
	}
	return decimal.NewFromBigInt(wei, -nativeDecimals), nil
}

// USDC USDC.e balanceOf
func (r *BalanceReader) USDC(ctx context.Context, addr string) (decimal.Decimal, error) {
	data, err := r.erc20.Pack("balanceOf", common.HexToAddress(addr))
	if err != nil {
		return decimal.Zero, fmt.Errorf("pack balanceOf: %w", err)
	}
	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.usdc, Data: data}, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("调用 balanceOf 失败: %w", err)
	}
	vals, err := r.erc20.Unpack("balanceOf", out)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unpack balanceOf: %w", err)
	}
	if len(vals) == 0 {
		return decimal.Zero, fmt.Errorf("balanceOf 返回为空")
	}
	amount, ok := vals[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("balanceOf 返回类型异常 %T", vals[0])
	}
	return decimal.NewFromBigInt(amount, -usdcDecimals), nil
}

// Snapshot 同时查询两种余额
func (r *BalanceReader) Snapshot(ctx context.Context, label, addr string) (Balance, error) {
	b := Balance{Label: label, Address: addr}
	var err error
	if b.Native, err = r.Native(ctx, addr); err != nil {
		return b, err
	}
	if b.USDC, err = r.USDC(ctx, addr); err != nil {
		return b, err
	}
	return b, nil
}
