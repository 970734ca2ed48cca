package ledger

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"stakeLedger/internal/model"
)

// Reader derives current state from the append-only history in a Store.
// Current values are never stored; they are the latest update by
// (blockNumber, logIndex).
type Reader struct {
	store  Store
	logger *zap.Logger
}

func NewReader(store Store, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{store: store, logger: logger}
}

// ProviderView is the derived current state of a provider.
type ProviderView struct {
	Identifier       string   `json:"identifier"`
	ProviderAdmin    string   `json:"provider_admin"`
	PendingAdmin     *string  `json:"pending_admin,omitempty"`
	ProviderTakeRate uint32   `json:"provider_take_rate"`
	RewardsRecipient string   `json:"rewards_recipient"`
	Attesters        []string `json:"attesters"`
	RegisteredBlock  uint64   `json:"registered_block"`
}

// PositionView is the derived current state of a position.
type PositionView struct {
	Address             string             `json:"address"`
	Beneficiary         string             `json:"beneficiary"`
	Type                model.PositionType `json:"type"`
	StakerAddress       string             `json:"staker_address"`
	OperatorAddress     *string            `json:"operator_address,omitempty"`
	Allocation          string             `json:"allocation"`
	TotalWithdrawn      string             `json:"total_withdrawn"`
	TotalSlashed        string             `json:"total_slashed"`
	RemainingAllocation string             `json:"remaining_allocation"`
	Attesters           []string           `json:"attesters"`
	IntegrityViolation  bool               `json:"integrity_violation,omitempty"`
}

// Latest returns the event with the greatest (blockNumber, logIndex), or nil.
func Latest(events []model.Event) model.Event {
	var latest model.Event
	for _, ev := range events {
		if latest == nil || model.Before(latest.Meta(), ev.Meta()) {
			latest = ev
		}
	}
	return latest
}

// Position returns the position row for a vault address.
func (r *Reader) Position(ctx context.Context, address string) (*model.Position, error) {
	events, err := r.store.Events(ctx, Filter{Table: model.TablePosition, Column: "address", Value: address})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: position %s", ErrNotFound, address)
	}
	return events[0].(*model.Position), nil
}

// Provider returns the registration row for a provider identifier.
func (r *Reader) Provider(ctx context.Context, identifier string) (*model.Provider, error) {
	events, err := r.store.Events(ctx, Filter{Table: model.TableProvider, Column: "identifier", Value: identifier})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: provider %s", ErrNotFound, identifier)
	}
	return events[0].(*model.Provider), nil
}

// CurrentOperator returns the latest operator of a position, falling back to
// the operator recorded at creation. ok is false when neither exists.
func (r *Reader) CurrentOperator(ctx context.Context, atp string) (string, bool, error) {
	updates, err := r.store.Events(ctx, Filter{Table: model.TableStakerOperatorUpdate, Column: "atp_address", Value: atp})
	if err != nil {
		return "", false, err
	}
	if latest := Latest(updates); latest != nil {
		return latest.(*model.StakerOperatorUpdate).OperatorAddress, true, nil
	}

	pos, err := r.Position(ctx, atp)
	if err != nil {
		return "", false, err
	}
	if pos.OperatorAddress == nil {
		return "", false, nil
	}
	return *pos.OperatorAddress, true, nil
}

// ProviderState folds the provider update logs over the registration row.
func (r *Reader) ProviderState(ctx context.Context, identifier string) (ProviderView, error) {
	p, err := r.Provider(ctx, identifier)
	if err != nil {
		return ProviderView{}, err
	}
	view := ProviderView{
		Identifier:       p.Identifier,
		ProviderAdmin:    p.ProviderAdmin,
		ProviderTakeRate: p.ProviderTakeRate,
		RewardsRecipient: p.RewardsRecipient,
		RegisteredBlock:  p.BlockNumber,
	}

	byProvider := func(table string) ([]model.Event, error) {
		return r.store.Events(ctx, Filter{Table: table, Column: "provider_identifier", Value: identifier})
	}

	rates, err := byProvider(model.TableProviderTakeRateUpdate)
	if err != nil {
		return ProviderView{}, err
	}
	if latest := Latest(rates); latest != nil {
		view.ProviderTakeRate = latest.(*model.ProviderTakeRateUpdate).NewTakeRate
	}

	recipients, err := byProvider(model.TableProviderRewardsRecipientUpdate)
	if err != nil {
		return ProviderView{}, err
	}
	if latest := Latest(recipients); latest != nil {
		view.RewardsRecipient = latest.(*model.ProviderRewardsRecipientUpdate).NewRewardsRecipient
	}

	updated, err := byProvider(model.TableProviderAdminUpdated)
	if err != nil {
		return ProviderView{}, err
	}
	lastUpdated := Latest(updated)
	if lastUpdated != nil {
		view.ProviderAdmin = lastUpdated.(*model.ProviderAdminUpdated).NewAdmin
	}

	initiated, err := byProvider(model.TableProviderAdminUpdateInitiated)
	if err != nil {
		return ProviderView{}, err
	}
	if lastInitiated := Latest(initiated); lastInitiated != nil {
		if lastUpdated == nil || model.Before(lastUpdated.Meta(), lastInitiated.Meta()) {
			pending := lastInitiated.(*model.ProviderAdminUpdateInitiated).NewAdmin
			view.PendingAdmin = &pending
		}
	}

	view.Attesters, err = r.AttestersForProvider(ctx, identifier)
	if err != nil {
		return ProviderView{}, err
	}
	return view, nil
}

// AttestersForProvider lists the attesters registered to a provider, in
// registration order, without duplicates.
func (r *Reader) AttestersForProvider(ctx context.Context, identifier string) ([]string, error) {
	events, err := r.store.Events(ctx, Filter{Table: model.TableProviderAttester, Column: "provider_identifier", Value: identifier})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = appendUnique(out, ev.(*model.ProviderAttester).AttesterAddress)
	}
	return out, nil
}

// StakesForPosition returns the delegated and self stakes of a position in
// canonical order.
func (r *Reader) StakesForPosition(ctx context.Context, atp string) ([]model.Event, error) {
	delegated, err := r.store.Events(ctx, Filter{Table: model.TableStakedWithProvider, Column: "atp_address", Value: atp})
	if err != nil {
		return nil, err
	}
	direct, err := r.store.Events(ctx, Filter{Table: model.TableStaked, Column: "atp_address", Value: atp})
	if err != nil {
		return nil, err
	}
	return mergeOrdered(delegated, direct), nil
}

// AttesterHistory returns every lifecycle event of an attester in canonical order.
func (r *Reader) AttesterHistory(ctx context.Context, attester string) ([]model.Event, error) {
	tables := []string{
		model.TableDeposit,
		model.TableFailedDeposit,
		model.TableWithdrawInitiated,
		model.TableWithdrawFinalized,
		model.TableSlashed,
	}
	var out []model.Event
	for _, table := range tables {
		events, err := r.store.Events(ctx, Filter{Table: table, Column: "attester_address", Value: attester})
		if err != nil {
			return nil, err
		}
		out = mergeOrdered(out, events)
	}
	return out, nil
}

// PositionSummary derives a position's remaining allocation from its
// withdrawal and slashing history.
func (r *Reader) PositionSummary(ctx context.Context, atp string) (PositionView, error) {
	pos, err := r.Position(ctx, atp)
	if err != nil {
		return PositionView{}, err
	}

	view := PositionView{
		Address:       pos.Address,
		Beneficiary:   pos.Beneficiary,
		Type:          pos.Type,
		StakerAddress: pos.StakerAddress,
		Allocation:    pos.Allocation,
	}

	if operator, ok, err := r.CurrentOperator(ctx, atp); err != nil {
		return PositionView{}, err
	} else if ok {
		view.OperatorAddress = &operator
	}

	withdrawals, err := r.store.Events(ctx, Filter{Table: model.TableTokensWithdrawnToBeneficiary, Column: "atp_address", Value: atp})
	if err != nil {
		return PositionView{}, err
	}
	withdrawn := big.NewInt(0)
	for _, ev := range withdrawals {
		if err := addAmount(withdrawn, ev.(*model.TokensWithdrawnToBeneficiary).Amount); err != nil {
			return PositionView{}, err
		}
	}

	stakes, err := r.StakesForPosition(ctx, atp)
	if err != nil {
		return PositionView{}, err
	}
	view.Attesters = make([]string, 0, len(stakes))
	for _, ev := range stakes {
		switch s := ev.(type) {
		case *model.StakedWithProvider:
			view.Attesters = appendUnique(view.Attesters, s.AttesterAddress)
		case *model.Staked:
			view.Attesters = appendUnique(view.Attesters, s.AttesterAddress)
		}
	}

	slashed := big.NewInt(0)
	for _, attester := range view.Attesters {
		events, err := r.store.Events(ctx, Filter{Table: model.TableSlashed, Column: "attester_address", Value: attester})
		if err != nil {
			return PositionView{}, err
		}
		for _, ev := range events {
			if err := addAmount(slashed, ev.(*model.Slashed).Amount); err != nil {
				return PositionView{}, err
			}
		}
	}

	allocation, err := parseAmount(pos.Allocation)
	if err != nil {
		return PositionView{}, fmt.Errorf("position %s allocation: %w", pos.Address, err)
	}
	remaining, violated := RemainingAllocation(allocation, withdrawn, slashed)
	if violated {
		r.logger.Error("data integrity violation: remaining allocation is negative",
			zap.String("position", pos.Address),
			zap.String("allocation", allocation.String()),
			zap.String("total_withdrawn", withdrawn.String()),
			zap.String("total_slashed", slashed.String()),
		)
	}

	view.TotalWithdrawn = withdrawn.String()
	view.TotalSlashed = slashed.String()
	view.RemainingAllocation = remaining.String()
	view.IntegrityViolation = violated
	return view, nil
}

// RemainingAllocation returns allocation - withdrawn - slashed clamped to
// zero. violated is true when the unclamped value is negative.
func RemainingAllocation(allocation, withdrawn, slashed *big.Int) (*big.Int, bool) {
	remaining := new(big.Int).Set(allocation)
	remaining.Sub(remaining, withdrawn)
	remaining.Sub(remaining, slashed)
	if remaining.Sign() < 0 {
		return big.NewInt(0), true
	}
	return remaining, false
}

func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	return parsed, nil
}

func addAmount(total *big.Int, value string) error {
	amount, err := parseAmount(value)
	if err != nil {
		return err
	}
	total.Add(total, amount)
	return nil
}

func appendUnique(items []string, item string) []string {
	for _, existing := range items {
		if sameValue(existing, item) {
			return items
		}
	}
	return append(items, item)
}

func mergeOrdered(a, b []model.Event) []model.Event {
	out := make([]model.Event, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if model.Before(b[j].Meta(), a[i].Meta()) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
