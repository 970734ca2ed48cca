package model

import "fmt"

const TablePosition = "atp_position"

// PositionType is the vault flavour of a position.
type PositionType string

const (
	PositionMATP    PositionType = "MATP"
	PositionLATP    PositionType = "LATP"
	PositionNCATP   PositionType = "NCATP"
	PositionUnknown PositionType = "Unknown"
)

// Valid reports whether t is one of the four position types.
func (t PositionType) Valid() bool {
	switch t {
	case PositionMATP, PositionLATP, PositionNCATP, PositionUnknown:
		return true
	default:
		return false
	}
}

// ParsePositionType accepts exactly MATP, LATP, NCATP or Unknown.
func ParsePositionType(s string) (PositionType, error) {
	t := PositionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid position type %q", s)
	}
	return t, nil
}

// Position is a token vault, created once when the vault is first observed.
// The operator recorded here is the one at creation; later changes live in
// StakerOperatorUpdate rows.
type Position struct {
	Address         string       `json:"address"`
	Beneficiary     string       `json:"beneficiary"`
	Allocation      string       `json:"allocation"`
	Type            PositionType `json:"type"`
	StakerAddress   string       `json:"staker_address"`
	OperatorAddress *string      `json:"operator_address,omitempty"`
	Provenance
}

func (p *Position) TableName() string { return TablePosition }
func (p *Position) Key() string       { return p.Address }

func (p *Position) Values() []any {
	vals := []any{p.Address, p.Beneficiary, p.Allocation, string(p.Type), p.StakerAddress, p.OperatorAddress}
	return append(vals, p.Provenance.values()...)
}

func (p *Position) Fields() []any {
	fields := []any{&p.Address, &p.Beneficiary, &p.Allocation, (*string)(&p.Type), &p.StakerAddress, &p.OperatorAddress}
	return append(fields, p.Provenance.fields()...)
}
