package staking

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	EventATPCreated                      = "ATPCreated"
	EventStakedWithProvider              = "StakedWithProvider"
	EventStaked                          = "Staked"
	EventERC20StakedWithProvider         = "ERC20StakedWithProvider"
	EventProviderRegistered              = "ProviderRegistered"
	EventProviderTakeRateUpdated         = "ProviderTakeRateUpdated"
	EventProviderRewardsRecipientUpdated = "ProviderRewardsRecipientUpdated"
	EventProviderAdminUpdateInitiated    = "ProviderAdminUpdateInitiated"
	EventProviderAdminUpdated            = "ProviderAdminUpdated"
	EventAttesterAddedToProvider         = "AttesterAddedToProvider"
	EventProviderQueueDripped            = "ProviderQueueDripped"
	EventDeposit                         = "Deposit"
	EventFailedDeposit                   = "FailedDeposit"
	EventWithdrawInitiated               = "WithdrawInitiated"
	EventWithdrawFinalized               = "WithdrawFinalized"
	EventSlashed                         = "Slashed"
	EventTokensWithdrawnToBeneficiary    = "TokensWithdrawnToBeneficiary"
	EventStakerOperatorUpdated           = "StakerOperatorUpdated"
)

// Factory, staker, registry and rollup events in one ABI.
const stakingABIJSON = `[
  {"anonymous": false, "name": "ATPCreated", "type": "event", "inputs": [
    {"indexed": true, "name": "beneficiary", "type": "address"},
    {"indexed": true, "name": "atp", "type": "address"},
    {"indexed": false, "name": "staker", "type": "address"},
    {"indexed": false, "name": "allocation", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "StakedWithProvider", "type": "event", "inputs": [
    {"indexed": true, "name": "atp", "type": "address"},
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": true, "name": "attester", "type": "address"},
    {"indexed": false, "name": "staker", "type": "address"},
    {"indexed": false, "name": "rollup", "type": "address"},
    {"indexed": false, "name": "coinbaseSplit", "type": "address"}
  ]},
  {"anonymous": false, "name": "Staked", "type": "event", "inputs": [
    {"indexed": true, "name": "atp", "type": "address"},
    {"indexed": true, "name": "attester", "type": "address"},
    {"indexed": false, "name": "staker", "type": "address"},
    {"indexed": false, "name": "rollup", "type": "address"},
    {"indexed": false, "name": "withdrawer", "type": "address"}
  ]},
  {"anonymous": false, "name": "ERC20StakedWithProvider", "type": "event", "inputs": [
    {"indexed": true, "name": "staker", "type": "address"},
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": true, "name": "attester", "type": "address"},
    {"indexed": false, "name": "rollup", "type": "address"},
    {"indexed": false, "name": "coinbaseSplit", "type": "address"},
    {"indexed": false, "name": "amount", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "ProviderRegistered", "type": "event", "inputs": [
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": true, "name": "providerAdmin", "type": "address"},
    {"indexed": false, "name": "providerTakeRate", "type": "uint16"},
    {"indexed": false, "name": "rewardsRecipient", "type": "address"}
  ]},
  {"anonymous": false, "name": "ProviderTakeRateUpdated", "type": "event", "inputs": [
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": false, "name": "newTakeRate", "type": "uint16"}
  ]},
  {"anonymous": false, "name": "ProviderRewardsRecipientUpdated", "type": "event", "inputs": [
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": false, "name": "newRewardsRecipient", "type": "address"}
  ]},
  {"anonymous": false, "name": "ProviderAdminUpdateInitiated", "type": "event", "inputs": [
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": true, "name": "newAdmin", "type": "address"}
  ]},
  {"anonymous": false, "name": "ProviderAdminUpdated", "type": "event", "inputs": [
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": true, "name": "newAdmin", "type": "address"}
  ]},
  {"anonymous": false, "name": "AttesterAddedToProvider", "type": "event", "inputs": [
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": false, "name": "attester", "type": "address"}
  ]},
  {"anonymous": false, "name": "ProviderQueueDripped", "type": "event", "inputs": [
    {"indexed": true, "name": "providerIdentifier", "type": "uint256"},
    {"indexed": true, "name": "attester", "type": "address"}
  ]},
  {"anonymous": false, "name": "Deposit", "type": "event", "inputs": [
    {"indexed": true, "name": "attester", "type": "address"},
    {"indexed": true, "name": "withdrawer", "type": "address"},
    {"indexed": false, "name": "amount", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "FailedDeposit", "type": "event", "inputs": [
    {"indexed": true, "name": "attester", "type": "address"},
    {"indexed": true, "name": "withdrawer", "type": "address"},
    {"indexed": false, "name": "amount", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "WithdrawInitiated", "type": "event", "inputs": [
    {"indexed": true, "name": "attester", "type": "address"},
    {"indexed": true, "name": "recipient", "type": "address"},
    {"indexed": false, "name": "amount", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "WithdrawFinalized", "type": "event", "inputs": [
    {"indexed": true, "name": "attester", "type": "address"},
    {"indexed": true, "name": "recipient", "type": "address"},
    {"indexed": false, "name": "amount", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "Slashed", "type": "event", "inputs": [
    {"indexed": true, "name": "attester", "type": "address"},
    {"indexed": false, "name": "amount", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "TokensWithdrawnToBeneficiary", "type": "event", "inputs": [
    {"indexed": true, "name": "beneficiary", "type": "address"},
    {"indexed": false, "name": "amount", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "StakerOperatorUpdated", "type": "event", "inputs": [
    {"indexed": true, "name": "staker", "type": "address"},
    {"indexed": true, "name": "operator", "type": "address"}
  ]}
]`

var (
	stakingABI     abi.ABI
	stakingABIOnce sync.Once
	stakingABIErr  error
)

// StakingABI returns the parsed event ABI.
func StakingABI() (abi.ABI, error) {
	stakingABIOnce.Do(func() {
		stakingABI, stakingABIErr = abi.JSON(strings.NewReader(stakingABIJSON))
	})
	return stakingABI, stakingABIErr
}
