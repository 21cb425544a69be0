package config

import "testing"

func TestNetworkEnabled(t *testing.T) {
	n := Network{ChainID: 84532, Name: "Base Sepolia"}
	if n.Enabled() {
		t.Fatalf("network without rpc url should be disabled")
	}
	n.RPCURL = "wss://example.org"
	if !n.Enabled() {
		t.Fatalf("network with rpc url should be enabled")
	}
}

func TestNetworkValidate(t *testing.T) {
	n := Network{
		ChainID: 84532,
		Name:    "Base Sepolia",
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("disabled network should validate: %v", err)
	}

	n.RPCURL = "wss://example.org"
	if err := n.Validate(); err == nil {
		t.Fatalf("enabled network without addresses should fail validation")
	}

	n.StakingAddress = "0x1000000000000000000000000000000000000001"
	n.TokenAddress = "not-an-address"
	if err := n.Validate(); err == nil {
		t.Fatalf("invalid token address should fail validation")
	}

	n.TokenAddress = "0x1000000000000000000000000000000000000002"
	if err := n.Validate(); err != nil {
		t.Fatalf("valid network should pass: %v", err)
	}
}
