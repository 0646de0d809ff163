package bindings

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
)

// Minimal interfaces of the contracts the liquidity bootstrap talks to. Only
// the methods that are called are listed.

// ERC20MetaData contains the ERC-20 surface used for metadata and approvals.
var ERC20MetaData = bind.MetaData{
	ABI: `[
		{"type":"function","name":"name","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
		{"type":"function","name":"symbol","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
		{"type":"function","name":"decimals","inputs":[],"outputs":[{"name":"","type":"uint8"}],"stateMutability":"view"},
		{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
		{"type":"function","name":"allowance","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
		{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"}
	]`,
	ID: "ERC20",
}

// UniswapV2FactoryMetaData contains the pair registry surface of a V2 factory.
var UniswapV2FactoryMetaData = bind.MetaData{
	ABI: `[
		{"type":"function","name":"getPair","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"pair","type":"address"}],"stateMutability":"view"},
		{"type":"function","name":"createPair","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"pair","type":"address"}],"stateMutability":"nonpayable"}
	]`,
	ID: "UniswapV2Factory",
}

// UniswapV2RouterMetaData contains the liquidity entry points of a V2 router.
var UniswapV2RouterMetaData = bind.MetaData{
	ABI: `[
		{"type":"function","name":"addLiquidity","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"amountADesired","type":"uint256"},{"name":"amountBDesired","type":"uint256"},{"name":"amountAMin","type":"uint256"},{"name":"amountBMin","type":"uint256"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amountA","type":"uint256"},{"name":"amountB","type":"uint256"},{"name":"liquidity","type":"uint256"}],"stateMutability":"nonpayable"},
		{"type":"function","name":"addLiquidityETH","inputs":[{"name":"token","type":"address"},{"name":"amountTokenDesired","type":"uint256"},{"name":"amountTokenMin","type":"uint256"},{"name":"amountETHMin","type":"uint256"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amountToken","type":"uint256"},{"name":"amountETH","type":"uint256"},{"name":"liquidity","type":"uint256"}],"stateMutability":"payable"}
	]`,
	ID: "UniswapV2Router",
}

// UniswapV1FactoryMetaData contains the exchange registry surface of a V1 factory.
var UniswapV1FactoryMetaData = bind.MetaData{
	ABI: `[
		{"type":"function","name":"initializeFactory","inputs":[{"name":"template","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"getExchange","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
		{"type":"function","name":"createExchange","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"nonpayable"}
	]`,
	ID: "UniswapV1Factory",
}

// UniswapV1ExchangeMetaData contains the deposit entry point of a V1 exchange.
var UniswapV1ExchangeMetaData = bind.MetaData{
	ABI: `[
		{"type":"function","name":"addLiquidity","inputs":[{"name":"min_liquidity","type":"uint256"},{"name":"max_tokens","type":"uint256"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"payable"}
	]`,
	ID: "UniswapV1Exchange",
}

var (
	ERC20             = mustParse(&ERC20MetaData)
	UniswapV2Factory  = mustParse(&UniswapV2FactoryMetaData)
	UniswapV2Router   = mustParse(&UniswapV2RouterMetaData)
	UniswapV1Factory  = mustParse(&UniswapV1FactoryMetaData)
	UniswapV1Exchange = mustParse(&UniswapV1ExchangeMetaData)
)

func mustParse(md *bind.MetaData) *abi.ABI {
	parsed, err := md.ParseABI()
	if err != nil {
		panic(errors.New("invalid ABI: " + err.Error()))
	}
	return parsed
}
