package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Network describes one monitored chain deployment. An entry with an
// empty RPC URL is disabled and skipped at startup.
type Network struct {
	ChainID        uint64
	Name           string
	RPCURL         string
	StakingAddress string
	TokenAddress   string
}

// Enabled reports whether the network has an RPC endpoint configured.
func (n Network) Enabled() bool {
	return n.RPCURL != ""
}

// Validate checks contract addresses on enabled networks.
func (n Network) Validate() error {
	if !n.Enabled() {
		return nil
	}
	if !common.IsHexAddress(n.StakingAddress) {
		return fmt.Errorf("network %s: invalid staking contract address %q", n.Name, n.StakingAddress)
	}
	if !common.IsHexAddress(n.TokenAddress) {
		return fmt.Errorf("network %s: invalid token contract address %q", n.Name, n.TokenAddress)
	}
	return nil
}

func loadNetworks(v *viper.Viper) []Network {
	return []Network{
		{
			ChainID:        421614,
			Name:           "Arbitrum Sepolia",
			RPCURL:         v.GetString("arb-sepolia-rpc"),
			StakingAddress: v.GetString("arb-sepolia-staking-address"),
			TokenAddress:   v.GetString("arb-sepolia-token-address"),
		},
		{
			ChainID:        84532,
			Name:           "Base Sepolia",
			RPCURL:         v.GetString("base-sepolia-rpc"),
			StakingAddress: v.GetString("base-sepolia-staking-address"),
			TokenAddress:   v.GetString("base-sepolia-token-address"),
		},
	}
}
