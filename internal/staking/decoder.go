package staking

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"stakeLedger/internal/model"
)

var (
	ErrRemovedLog       = errors.New("staking: log was removed by a reorg")
	ErrUnsupportedTopic = errors.New("staking: unsupported topic0")
)

// DecoderConfig configures decoder behavior.
type DecoderConfig struct {
	// Factories maps a vault factory address to the position type it creates.
	Factories map[string]model.PositionType
}

// Decoder turns raw staking logs into ledger events.
type Decoder struct {
	stakingABI  abi.ABI
	topicToName map[string]string
	factories   map[string]model.PositionType
}

// NewDecoder builds a decoder for every staking event.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	stakingABI, err := StakingABI()
	if err != nil {
		return nil, err
	}

	topicToName := make(map[string]string, len(stakingABI.Events))
	for name, event := range stakingABI.Events {
		topicToName[strings.ToLower(event.ID.Hex())] = name
	}

	factories := make(map[string]model.PositionType, len(cfg.Factories))
	for addr, positionType := range cfg.Factories {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid factory address: %s", addr)
		}
		if !positionType.Valid() {
			return nil, fmt.Errorf("invalid position type %q for factory %s", positionType, addr)
		}
		factories[strings.ToLower(addr)] = positionType
	}

	return &Decoder{
		stakingABI:  stakingABI,
		topicToName: topicToName,
		factories:   factories,
	}, nil
}

// CanDecode checks if the topic0 is supported.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// EventName returns the event name for a topic0, or "".
func (d *Decoder) EventName(topic0 string) string {
	return d.topicToName[strings.ToLower(topic0)]
}

// Topics returns every supported topic0, sorted.
func (d *Decoder) Topics() []common.Hash {
	out := make([]common.Hash, 0, len(d.topicToName))
	for topic := range d.topicToName {
		out = append(out, common.HexToHash(topic))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex() < out[j].Hex() })
	return out
}

// PositionType returns the type created by a factory; unknown factories map
// to Unknown.
func (d *Decoder) PositionType(factory string) model.PositionType {
	if t, ok := d.factories[strings.ToLower(factory)]; ok {
		return t
	}
	return model.PositionUnknown
}

// Decode converts a LogRecord into a ledger event.
func (d *Decoder) Decode(log model.LogRecord) (model.Event, error) {
	if log.Removed {
		return nil, ErrRemovedLog
	}
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	if strings.TrimSpace(log.TxHash) == "" {
		return nil, fmt.Errorf("missing tx hash")
	}
	name, ok := d.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTopic, log.Topics[0])
	}
	if !common.IsHexAddress(log.Address) {
		return nil, fmt.Errorf("invalid emitter address: %s", log.Address)
	}

	f, err := d.unpack(name, log)
	if err != nil {
		return nil, err
	}
	prov := log.Provenance()
	prov.TxHash = strings.ToLower(prov.TxHash)
	id := model.EventID(log.TxHash, log.LogIndex)
	emitter := strings.ToLower(log.Address)

	var ev model.Event
	switch name {
	case EventATPCreated:
		ev = &model.Position{
			Address:       f.address("atp"),
			Beneficiary:   f.address("beneficiary"),
			Allocation:    f.amount("allocation"),
			Type:          d.PositionType(emitter),
			StakerAddress: f.address("staker"),
			Provenance:    prov,
		}
	case EventStakedWithProvider:
		ev = &model.StakedWithProvider{
			ID:                   id,
			ATPAddress:           f.address("atp"),
			StakerAddress:        f.address("staker"),
			ProviderIdentifier:   f.amount("providerIdentifier"),
			AttesterAddress:      f.address("attester"),
			RollupAddress:        f.address("rollup"),
			CoinbaseSplitAddress: f.address("coinbaseSplit"),
			Provenance:           prov,
		}
	case EventStaked:
		ev = &model.Staked{
			ID:                id,
			ATPAddress:        f.address("atp"),
			StakerAddress:     f.address("staker"),
			AttesterAddress:   f.address("attester"),
			RollupAddress:     f.address("rollup"),
			WithdrawerAddress: f.address("withdrawer"),
			Provenance:        prov,
		}
	case EventERC20StakedWithProvider:
		ev = &model.ERC20StakedWithProvider{
			ID:                   id,
			StakerAddress:        f.address("staker"),
			ProviderIdentifier:   f.amount("providerIdentifier"),
			AttesterAddress:      f.address("attester"),
			RollupAddress:        f.address("rollup"),
			CoinbaseSplitAddress: f.address("coinbaseSplit"),
			Amount:               f.amount("amount"),
			Provenance:           prov,
		}
	case EventProviderRegistered:
		ev = &model.Provider{
			Identifier:       f.amount("providerIdentifier"),
			ProviderAdmin:    f.address("providerAdmin"),
			ProviderTakeRate: f.uint16("providerTakeRate"),
			RewardsRecipient: f.address("rewardsRecipient"),
			Provenance:       prov,
		}
	case EventProviderTakeRateUpdated:
		ev = &model.ProviderTakeRateUpdate{
			ID:                 id,
			ProviderIdentifier: f.amount("providerIdentifier"),
			NewTakeRate:        f.uint16("newTakeRate"),
			Provenance:         prov,
		}
	case EventProviderRewardsRecipientUpdated:
		ev = &model.ProviderRewardsRecipientUpdate{
			ID:                  id,
			ProviderIdentifier:  f.amount("providerIdentifier"),
			NewRewardsRecipient: f.address("newRewardsRecipient"),
			Provenance:          prov,
		}
	case EventProviderAdminUpdateInitiated:
		ev = &model.ProviderAdminUpdateInitiated{
			ID:                 id,
			ProviderIdentifier: f.amount("providerIdentifier"),
			NewAdmin:           f.address("newAdmin"),
			Provenance:         prov,
		}
	case EventProviderAdminUpdated:
		ev = &model.ProviderAdminUpdated{
			ID:                 id,
			ProviderIdentifier: f.amount("providerIdentifier"),
			NewAdmin:           f.address("newAdmin"),
			Provenance:         prov,
		}
	case EventAttesterAddedToProvider:
		ev = &model.ProviderAttester{
			ID:                 id,
			ProviderIdentifier: f.amount("providerIdentifier"),
			AttesterAddress:    f.address("attester"),
			Provenance:         prov,
		}
	case EventProviderQueueDripped:
		ev = &model.ProviderQueueDrip{
			ID:                 id,
			ProviderIdentifier: f.amount("providerIdentifier"),
			AttesterAddress:    f.address("attester"),
			Provenance:         prov,
		}
	case EventDeposit:
		ev = &model.Deposit{
			ID:                id,
			AttesterAddress:   f.address("attester"),
			WithdrawerAddress: f.address("withdrawer"),
			Amount:            f.amount("amount"),
			Provenance:        prov,
		}
	case EventFailedDeposit:
		ev = &model.FailedDeposit{
			ID:                id,
			AttesterAddress:   f.address("attester"),
			WithdrawerAddress: f.address("withdrawer"),
			Amount:            f.amount("amount"),
			Provenance:        prov,
		}
	case EventWithdrawInitiated:
		ev = &model.WithdrawInitiated{
			ID:               id,
			AttesterAddress:  f.address("attester"),
			RecipientAddress: f.address("recipient"),
			Amount:           f.amount("amount"),
			Provenance:       prov,
		}
	case EventWithdrawFinalized:
		ev = &model.WithdrawFinalized{
			ID:               id,
			AttesterAddress:  f.address("attester"),
			RecipientAddress: f.address("recipient"),
			Amount:           f.amount("amount"),
			Provenance:       prov,
		}
	case EventSlashed:
		ev = &model.Slashed{
			ID:              id,
			AttesterAddress: f.address("attester"),
			Amount:          f.amount("amount"),
			Provenance:      prov,
		}
	case EventTokensWithdrawnToBeneficiary:
		ev = &model.TokensWithdrawnToBeneficiary{
			ID:          id,
			ATPAddress:  emitter,
			Beneficiary: f.address("beneficiary"),
			Amount:      f.amount("amount"),
			Provenance:  prov,
		}
	case EventStakerOperatorUpdated:
		ev = &model.StakerOperatorUpdate{
			ID:              id,
			ATPAddress:      emitter,
			StakerAddress:   f.address("staker"),
			OperatorAddress: f.address("operator"),
			Provenance:      prov,
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTopic, name)
	}
	if f.err != nil {
		return nil, f.err
	}
	return ev, nil
}

func (d *Decoder) unpack(name string, log model.LogRecord) (*fields, error) {
	event := d.stakingABI.Events[name]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	values := make(map[string]interface{}, len(event.Inputs))
	if err := abi.ParseTopicsIntoMap(values, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("%s: parse topics: %w", name, err)
	}

	data, err := hexutil.Decode(normalizeData(log.Data))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid data: %w", name, err)
	}
	if nonIndexed := event.Inputs.NonIndexed(); len(nonIndexed) > 0 {
		if err := nonIndexed.UnpackIntoMap(values, data); err != nil {
			return nil, fmt.Errorf("unpack %s: %w", name, err)
		}
	}
	return &fields{event: name, values: values}, nil
}

// fields reads typed values out of a decoded event, keeping the first error.
type fields struct {
	event  string
	values map[string]interface{}
	err    error
}

func (f *fields) fail(format string, args ...any) {
	if f.err == nil {
		f.err = fmt.Errorf("%s: "+format, append([]any{f.event}, args...)...)
	}
}

func (f *fields) address(name string) string {
	addr, ok := f.values[name].(common.Address)
	if !ok {
		f.fail("field %s is %T, want address", name, f.values[name])
		return ""
	}
	return strings.ToLower(addr.Hex())
}

func (f *fields) amount(name string) string {
	v, ok := f.values[name].(*big.Int)
	if !ok || v == nil {
		f.fail("field %s is %T, want uint256", name, f.values[name])
		return ""
	}
	return v.String()
}

func (f *fields) uint16(name string) uint32 {
	v, ok := f.values[name].(uint16)
	if !ok {
		f.fail("field %s is %T, want uint16", name, f.values[name])
		return 0
	}
	return uint32(v)
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	out := make([]common.Hash, 0, indexedCount)
	for _, topic := range topics[1:] {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func normalizeData(data string) string {
	if data == "" || data == "0x" {
		return "0x"
	}
	return data
}
