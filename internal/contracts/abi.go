package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const stakingABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "Staked",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "Withdrawn",
    "type": "event"
  }
]`

const tokenABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  }
]`

var (
	stakingABI     abi.ABI
	stakingABIOnce sync.Once
	stakingABIErr  error
	tokenABI       abi.ABI
	tokenABIOnce   sync.Once
	tokenABIErr    error
)

// StakingABI returns the parsed staking contract ABI.
func StakingABI() (abi.ABI, error) {
	stakingABIOnce.Do(func() {
		stakingABI, stakingABIErr = abi.JSON(strings.NewReader(stakingABIJSON))
	})
	return stakingABI, stakingABIErr
}

// TokenABI returns the parsed token contract ABI.
func TokenABI() (abi.ABI, error) {
	tokenABIOnce.Do(func() {
		tokenABI, tokenABIErr = abi.JSON(strings.NewReader(tokenABIJSON))
	})
	return tokenABI, tokenABIErr
}
