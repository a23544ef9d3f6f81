package fees

import (
	"nftfi/core/types"
)

type InstantiateMsg struct {
	Name               string  `json:"name"`
	Owner              *string `json:"owner,omitempty"`
	Treasury           string  `json:"treasury"`
	ProjectsAllocation *uint64 `json:"projects_allocation_for_assets_fee,omitempty"`
}

type DepositFees struct {
	Addresses []string `json:"addresses"`
}

type WithdrawFees struct {
	Addresses []string `json:"addresses"`
}

type AddAssociatedAddress struct {
	Address    string `json:"address"`
	FeeAddress string `json:"fee_address"`
}

type ModifyContractInfo struct {
	Owner              *string `json:"owner,omitempty"`
	Treasury           *string `json:"treasury,omitempty"`
	ProjectsAllocation *uint64 `json:"projects_allocation_for_assets_fee,omitempty"`
}

type ExecuteMsg struct {
	DepositFees          *DepositFees          `json:"deposit_fees,omitempty"`
	WithdrawFees         *WithdrawFees         `json:"withdraw_fees,omitempty"`
	AddAssociatedAddress *AddAssociatedAddress `json:"add_associated_address,omitempty"`
	ModifyContractInfo   *ModifyContractInfo   `json:"modify_contract_info,omitempty"`
}

type AmountQuery struct {
	Address string `json:"address"`
}

type AddressesQuery struct {
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type QueryMsg struct {
	ContractInfo *struct{}       `json:"contract_info,omitempty"`
	Amount       *AmountQuery    `json:"amount,omitempty"`
	Addresses    *AddressesQuery `json:"addresses,omitempty"`
}

type ContractInfoResponse struct {
	Name               string `json:"name"`
	Owner              string `json:"owner"`
	Treasury           string `json:"treasury"`
	ProjectsAllocation uint64 `json:"projects_allocation_for_assets_fee"`
}

// DepositMsg routes fee to distributor, crediting the supplied collections.
func DepositMsg(distributor string, fee types.Coin, addresses ...string) (types.CosmosMsg, error) {
	if addresses == nil {
		addresses = []string{}
	}
	return types.NewWasmExecute(distributor, ExecuteMsg{DepositFees: &DepositFees{Addresses: addresses}}, fee)
}
