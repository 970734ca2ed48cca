package model

const (
	TableDeposit                      = "deposit"
	TableFailedDeposit                = "failed_deposit"
	TableWithdrawInitiated            = "withdraw_initiated"
	TableWithdrawFinalized            = "withdraw_finalized"
	TableSlashed                      = "slashed"
	TableTokensWithdrawnToBeneficiary = "tokens_withdrawn_to_beneficiary"
	TableProviderAttester             = "provider_attester"
	TableProviderQueueDrip            = "provider_queue_drip"
)

// Deposit records an attester entering the validator set.
type Deposit struct {
	ID                string `json:"id"`
	AttesterAddress   string `json:"attester_address"`
	WithdrawerAddress string `json:"withdrawer_address"`
	Amount            string `json:"amount"`
	Provenance
}

func (e *Deposit) TableName() string { return TableDeposit }
func (e *Deposit) Key() string       { return e.ID }

func (e *Deposit) Values() []any {
	return append([]any{e.ID, e.AttesterAddress, e.WithdrawerAddress, e.Amount}, e.Provenance.values()...)
}

func (e *Deposit) Fields() []any {
	return append([]any{&e.ID, &e.AttesterAddress, &e.WithdrawerAddress, &e.Amount}, e.Provenance.fields()...)
}

// FailedDeposit records a deposit the rollup refused.
type FailedDeposit struct {
	ID                string `json:"id"`
	AttesterAddress   string `json:"attester_address"`
	WithdrawerAddress string `json:"withdrawer_address"`
	Amount            string `json:"amount"`
	Provenance
}

func (e *FailedDeposit) TableName() string { return TableFailedDeposit }
func (e *FailedDeposit) Key() string       { return e.ID }

func (e *FailedDeposit) Values() []any {
	return append([]any{e.ID, e.AttesterAddress, e.WithdrawerAddress, e.Amount}, e.Provenance.values()...)
}

func (e *FailedDeposit) Fields() []any {
	return append([]any{&e.ID, &e.AttesterAddress, &e.WithdrawerAddress, &e.Amount}, e.Provenance.fields()...)
}

// WithdrawInitiated records the start of an attester exit.
type WithdrawInitiated struct {
	ID               string `json:"id"`
	AttesterAddress  string `json:"attester_address"`
	RecipientAddress string `json:"recipient_address"`
	Amount           string `json:"amount"`
	Provenance
}

func (e *WithdrawInitiated) TableName() string { return TableWithdrawInitiated }
func (e *WithdrawInitiated) Key() string       { return e.ID }

func (e *WithdrawInitiated) Values() []any {
	return append([]any{e.ID, e.AttesterAddress, e.RecipientAddress, e.Amount}, e.Provenance.values()...)
}

func (e *WithdrawInitiated) Fields() []any {
	return append([]any{&e.ID, &e.AttesterAddress, &e.RecipientAddress, &e.Amount}, e.Provenance.fields()...)
}

// WithdrawFinalized records the completion of an attester exit.
type WithdrawFinalized struct {
	ID               string `json:"id"`
	AttesterAddress  string `json:"attester_address"`
	RecipientAddress string `json:"recipient_address"`
	Amount           string `json:"amount"`
	Provenance
}

func (e *WithdrawFinalized) TableName() string { return TableWithdrawFinalized }
func (e *WithdrawFinalized) Key() string       { return e.ID }

func (e *WithdrawFinalized) Values() []any {
	return append([]any{e.ID, e.AttesterAddress, e.RecipientAddress, e.Amount}, e.Provenance.values()...)
}

func (e *WithdrawFinalized) Fields() []any {
	return append([]any{&e.ID, &e.AttesterAddress, &e.RecipientAddress, &e.Amount}, e.Provenance.fields()...)
}

// Slashed records a penalty applied to an attester.
type Slashed struct {
	ID              string `json:"id"`
	AttesterAddress string `json:"attester_address"`
	Amount          string `json:"amount"`
	Provenance
}

func (e *Slashed) TableName() string { return TableSlashed }
func (e *Slashed) Key() string       { return e.ID }

func (e *Slashed) Values() []any {
	return append([]any{e.ID, e.AttesterAddress, e.Amount}, e.Provenance.values()...)
}

func (e *Slashed) Fields() []any {
	return append([]any{&e.ID, &e.AttesterAddress, &e.Amount}, e.Provenance.fields()...)
}

// TokensWithdrawnToBeneficiary records tokens leaving a vault for its beneficiary.
type TokensWithdrawnToBeneficiary struct {
	ID          string `json:"id"`
	ATPAddress  string `json:"atp_address"`
	Beneficiary string `json:"beneficiary"`
	Amount      string `json:"amount"`
	Provenance
}

func (e *TokensWithdrawnToBeneficiary) TableName() string { return TableTokensWithdrawnToBeneficiary }
func (e *TokensWithdrawnToBeneficiary) Key() string       { return e.ID }

func (e *TokensWithdrawnToBeneficiary) Values() []any {
	return append([]any{e.ID, e.ATPAddress, e.Beneficiary, e.Amount}, e.Provenance.values()...)
}

func (e *TokensWithdrawnToBeneficiary) Fields() []any {
	return append([]any{&e.ID, &e.ATPAddress, &e.Beneficiary, &e.Amount}, e.Provenance.fields()...)
}

// ProviderAttester records an attester key registered to a provider's queue.
type ProviderAttester struct {
	ID                 string `json:"id"`
	ProviderIdentifier string `json:"provider_identifier"`
	AttesterAddress    string `json:"attester_address"`
	Provenance
}

func (e *ProviderAttester) TableName() string { return TableProviderAttester }
func (e *ProviderAttester) Key() string       { return e.ID }

func (e *ProviderAttester) Values() []any {
	return append([]any{e.ID, e.ProviderIdentifier, e.AttesterAddress}, e.Provenance.values()...)
}

func (e *ProviderAttester) Fields() []any {
	return append([]any{&e.ID, &e.ProviderIdentifier, &e.AttesterAddress}, e.Provenance.fields()...)
}

// ProviderQueueDrip records an attester taken off a provider's queue.
type ProviderQueueDrip struct {
	ID                 string `json:"id"`
	ProviderIdentifier string `json:"provider_identifier"`
	AttesterAddress    string `json:"attester_address"`
	Provenance
}

func (e *ProviderQueueDrip) TableName() string { return TableProviderQueueDrip }
func (e *ProviderQueueDrip) Key() string       { return e.ID }

func (e *ProviderQueueDrip) Values() []any {
	return append([]any{e.ID, e.ProviderIdentifier, e.AttesterAddress}, e.Provenance.values()...)
}

func (e *ProviderQueueDrip) Fields() []any {
	return append([]any{&e.ID, &e.ProviderIdentifier, &e.AttesterAddress}, e.Provenance.fields()...)
}
