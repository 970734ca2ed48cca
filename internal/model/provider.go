package model

const TableProvider = "provider"

// Provider is a staking delegate. Its mutable attributes are never updated in
// place; see the provider update tables.
type Provider struct {
	Identifier       string `json:"identifier"`
	ProviderAdmin    string `json:"provider_admin"`
	ProviderTakeRate uint32 `json:"provider_take_rate"`
	RewardsRecipient string `json:"rewards_recipient"`
	Provenance
}

func (p *Provider) TableName() string { return TableProvider }
func (p *Provider) Key() string       { return p.Identifier }

func (p *Provider) Values() []any {
	vals := []any{p.Identifier, p.ProviderAdmin, int32(p.ProviderTakeRate), p.RewardsRecipient}
	return append(vals, p.Provenance.values()...)
}

func (p *Provider) Fields() []any {
	fields := []any{&p.Identifier, &p.ProviderAdmin, &p.ProviderTakeRate, &p.RewardsRecipient}
	return append(fields, p.Provenance.fields()...)
}
