package model

const (
	TableStakerOperatorUpdate           = "staker_operator_update"
	TableProviderTakeRateUpdate         = "provider_take_rate_update"
	TableProviderRewardsRecipientUpdate = "provider_rewards_recipient_update"
	TableProviderAdminUpdateInitiated   = "provider_admin_update_initiated"
	TableProviderAdminUpdated           = "provider_admin_updated"
)

// StakerOperatorUpdate records a new operator for a position's staker.
type StakerOperatorUpdate struct {
	ID              string `json:"id"`
	ATPAddress      string `json:"atp_address"`
	StakerAddress   string `json:"staker_address"`
	OperatorAddress string `json:"operator_address"`
	Provenance
}

func (e *StakerOperatorUpdate) TableName() string { return TableStakerOperatorUpdate }
func (e *StakerOperatorUpdate) Key() string       { return e.ID }

func (e *StakerOperatorUpdate) Values() []any {
	return append([]any{e.ID, e.ATPAddress, e.StakerAddress, e.OperatorAddress}, e.Provenance.values()...)
}

func (e *StakerOperatorUpdate) Fields() []any {
	return append([]any{&e.ID, &e.ATPAddress, &e.StakerAddress, &e.OperatorAddress}, e.Provenance.fields()...)
}

type ProviderTakeRateUpdate struct {
	ID                 string `json:"id"`
	ProviderIdentifier string `json:"provider_identifier"`
	NewTakeRate        uint32 `json:"new_take_rate"`
	Provenance
}

func (e *ProviderTakeRateUpdate) TableName() string { return TableProviderTakeRateUpdate }
func (e *ProviderTakeRateUpdate) Key() string       { return e.ID }

func (e *ProviderTakeRateUpdate) Values() []any {
	return append([]any{e.ID, e.ProviderIdentifier, int32(e.NewTakeRate)}, e.Provenance.values()...)
}

func (e *ProviderTakeRateUpdate) Fields() []any {
	return append([]any{&e.ID, &e.ProviderIdentifier, &e.NewTakeRate}, e.Provenance.fields()...)
}

type ProviderRewardsRecipientUpdate struct {
	ID                  string `json:"id"`
	ProviderIdentifier  string `json:"provider_identifier"`
	NewRewardsRecipient string `json:"new_rewards_recipient"`
	Provenance
}

func (e *ProviderRewardsRecipientUpdate) TableName() string { return TableProviderRewardsRecipientUpdate }
func (e *ProviderRewardsRecipientUpdate) Key() string       { return e.ID }

func (e *ProviderRewardsRecipientUpdate) Values() []any {
	return append([]any{e.ID, e.ProviderIdentifier, e.NewRewardsRecipient}, e.Provenance.values()...)
}

func (e *ProviderRewardsRecipientUpdate) Fields() []any {
	return append([]any{&e.ID, &e.ProviderIdentifier, &e.NewRewardsRecipient}, e.Provenance.fields()...)
}

// ProviderAdminUpdateInitiated records the first step of a two-step admin transfer.
type ProviderAdminUpdateInitiated struct {
	ID                 string `json:"id"`
	ProviderIdentifier string `json:"provider_identifier"`
	NewAdmin           string `json:"new_admin"`
	Provenance
}

func (e *ProviderAdminUpdateInitiated) TableName() string { return TableProviderAdminUpdateInitiated }
func (e *ProviderAdminUpdateInitiated) Key() string       { return e.ID }

func (e *ProviderAdminUpdateInitiated) Values() []any {
	return append([]any{e.ID, e.ProviderIdentifier, e.NewAdmin}, e.Provenance.values()...)
}

func (e *ProviderAdminUpdateInitiated) Fields() []any {
	return append([]any{&e.ID, &e.ProviderIdentifier, &e.NewAdmin}, e.Provenance.fields()...)
}

// ProviderAdminUpdated records an accepted admin transfer.
type ProviderAdminUpdated struct {
	ID                 string `json:"id"`
	ProviderIdentifier string `json:"provider_identifier"`
	NewAdmin           string `json:"new_admin"`
	Provenance
}

func (e *ProviderAdminUpdated) TableName() string { return TableProviderAdminUpdated }
func (e *ProviderAdminUpdated) Key() string       { return e.ID }

func (e *ProviderAdminUpdated) Values() []any {
	return append([]any{e.ID, e.ProviderIdentifier, e.NewAdmin}, e.Provenance.values()...)
}

func (e *ProviderAdminUpdated) Fields() []any {
	return append([]any{&e.ID, &e.ProviderIdentifier, &e.NewAdmin}, e.Provenance.fields()...)
}
