package sc

import (
	"embed"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/*.json
var abiFiles embed.FS

func extractContractABI(jsonFile string) (*abi.ABI, error) {
	contractBytes, err := abiFiles.ReadFile(jsonFile)
	if err != nil {
		return nil, err
	}

	var m map[string]json.RawMessage
	if err = json.Unmarshal(contractBytes, &m); err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(strings.NewReader(string(m["abi"])))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func TokenABI() (*abi.ABI, error) {
	return extractContractABI("abi/OceanGuard.json")
}

func GovernanceABI() (*abi.ABI, error) {
	return extractContractABI("abi/OceanGuardGovernance.json")
}
