package model

const (
	TableStakedWithProvider      = "staked_with_provider"
	TableStaked                  = "staked"
	TableERC20StakedWithProvider = "erc20_staked_with_provider"
)

// StakedWithProvider records a position delegating an attester to a provider.
type StakedWithProvider struct {
	ID                   string `json:"id"`
	ATPAddress           string `json:"atp_address"`
	StakerAddress        string `json:"staker_address"`
	ProviderIdentifier   string `json:"provider_identifier"`
	AttesterAddress      string `json:"attester_address"`
	RollupAddress        string `json:"rollup_address"`
	CoinbaseSplitAddress string `json:"coinbase_split_address"`
	Provenance
}

func (e *StakedWithProvider) TableName() string { return TableStakedWithProvider }
func (e *StakedWithProvider) Key() string       { return e.ID }

func (e *StakedWithProvider) Values() []any {
	vals := []any{e.ID, e.ATPAddress, e.StakerAddress, e.ProviderIdentifier, e.AttesterAddress, e.RollupAddress, e.CoinbaseSplitAddress}
	return append(vals, e.Provenance.values()...)
}

func (e *StakedWithProvider) Fields() []any {
	fields := []any{&e.ID, &e.ATPAddress, &e.StakerAddress, &e.ProviderIdentifier, &e.AttesterAddress, &e.RollupAddress, &e.CoinbaseSplitAddress}
	return append(fields, e.Provenance.fields()...)
}

// Staked records a position self-staking an attester.
type Staked struct {
	ID                string `json:"id"`
	ATPAddress        string `json:"atp_address"`
	StakerAddress     string `json:"staker_address"`
	AttesterAddress   string `json:"attester_address"`
	RollupAddress     string `json:"rollup_address"`
	WithdrawerAddress string `json:"withdrawer_address"`
	Provenance
}

func (e *Staked) TableName() string { return TableStaked }
func (e *Staked) Key() string       { return e.ID }

func (e *Staked) Values() []any {
	vals := []any{e.ID, e.ATPAddress, e.StakerAddress, e.AttesterAddress, e.RollupAddress, e.WithdrawerAddress}
	return append(vals, e.Provenance.values()...)
}

func (e *Staked) Fields() []any {
	fields := []any{&e.ID, &e.ATPAddress, &e.StakerAddress, &e.AttesterAddress, &e.RollupAddress, &e.WithdrawerAddress}
	return append(fields, e.Provenance.fields()...)
}

// ERC20StakedWithProvider records a delegation made directly from a wallet,
// without a vault.
type ERC20StakedWithProvider struct {
	ID                   string `json:"id"`
	StakerAddress        string `json:"staker_address"`
	ProviderIdentifier   string `json:"provider_identifier"`
	AttesterAddress      string `json:"attester_address"`
	RollupAddress        string `json:"rollup_address"`
	CoinbaseSplitAddress string `json:"coinbase_split_address"`
	Amount               string `json:"amount"`
	Provenance
}

func (e *ERC20StakedWithProvider) TableName() string { return TableERC20StakedWithProvider }
func (e *ERC20StakedWithProvider) Key() string       { return e.ID }

func (e *ERC20StakedWithProvider) Values() []any {
	vals := []any{e.ID, e.StakerAddress, e.ProviderIdentifier, e.AttesterAddress, e.RollupAddress, e.CoinbaseSplitAddress, e.Amount}
	return append(vals, e.Provenance.values()...)
}

func (e *ERC20StakedWithProvider) Fields() []any {
	fields := []any{&e.ID, &e.StakerAddress, &e.ProviderIdentifier, &e.AttesterAddress, &e.RollupAddress, &e.CoinbaseSplitAddress, &e.Amount}
	return append(fields, e.Provenance.fields()...)
}
