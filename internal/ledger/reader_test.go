package ledger

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stakeLedger/internal/model"
)

const (
	atpAddr      = "0x1000000000000000000000000000000000000001"
	stakerAddr   = "0x2000000000000000000000000000000000000002"
	attesterAddr = "0x3000000000000000000000000000000000000003"
)

func mustAppend(t *testing.T, s Store, events ...model.Event) {
	t.Helper()
	if _, err := s.Append(context.Background(), events); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestReader_CurrentOperatorUsesLatestUpdate(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	initial := "0x00000000000000000000000000000000000000a1"
	mustAppend(t, s, &model.Position{
		Address: atpAddr, Beneficiary: "0xbe", Allocation: "1000", Type: model.PositionMATP,
		StakerAddress: stakerAddr, OperatorAddress: &initial, Provenance: prov(1, "0x01", 0),
	})

	r := NewReader(s, nil)
	op, ok, err := r.CurrentOperator(context.Background(), atpAddr)
	if err != nil || !ok || op != initial {
		t.Fatalf("initial operator: %q %v %v", op, ok, err)
	}

	// Appended out of order: the block 30 update must win.
	mustAppend(t, s,
		&model.StakerOperatorUpdate{ID: "u2", ATPAddress: atpAddr, StakerAddress: stakerAddr, OperatorAddress: "0xop-late", Provenance: prov(30, "0x03", 1)},
		&model.StakerOperatorUpdate{ID: "u1", ATPAddress: atpAddr, StakerAddress: stakerAddr, OperatorAddress: "0xop-early", Provenance: prov(20, "0x02", 9)},
		&model.StakerOperatorUpdate{ID: "u0", ATPAddress: atpAddr, StakerAddress: stakerAddr, OperatorAddress: "0xop-same-block", Provenance: prov(30, "0x03", 0)},
	)
	op, ok, err = r.CurrentOperator(context.Background(), atpAddr)
	if err != nil || !ok {
		t.Fatalf("CurrentOperator: %v %v", ok, err)
	}
	if op != "0xop-late" {
		t.Fatalf("operator: got %s want 0xop-late", op)
	}
}

func TestReader_ProviderStateFoldsUpdates(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	mustAppend(t, s,
		&model.Provider{Identifier: "7", ProviderAdmin: "0xadmin0", ProviderTakeRate: 500, RewardsRecipient: "0xrr0", Provenance: prov(1, "0x01", 0)},
		&model.ProviderTakeRateUpdate{ID: "t1", ProviderIdentifier: "7", NewTakeRate: 750, Provenance: prov(5, "0x05", 0)},
		&model.ProviderTakeRateUpdate{ID: "t2", ProviderIdentifier: "7", NewTakeRate: 300, Provenance: prov(9, "0x09", 0)},
		&model.ProviderRewardsRecipientUpdate{ID: "r1", ProviderIdentifier: "7", NewRewardsRecipient: "0xrr1", Provenance: prov(6, "0x06", 0)},
		&model.ProviderAdminUpdateInitiated{ID: "i1", ProviderIdentifier: "7", NewAdmin: "0xadmin1", Provenance: prov(7, "0x07", 0)},
		&model.ProviderAdminUpdated{ID: "a1", ProviderIdentifier: "7", NewAdmin: "0xadmin1", Provenance: prov(8, "0x08", 0)},
		&model.ProviderAdminUpdateInitiated{ID: "i2", ProviderIdentifier: "7", NewAdmin: "0xadmin2", Provenance: prov(10, "0x0a", 0)},
		&model.ProviderAttester{ID: "p1", ProviderIdentifier: "7", AttesterAddress: attesterAddr, Provenance: prov(2, "0x02", 0)},
		&model.ProviderAttester{ID: "p2", ProviderIdentifier: "7", AttesterAddress: "0xother", Provenance: prov(3, "0x03", 0)},
	)

	view, err := NewReader(s, nil).ProviderState(context.Background(), "7")
	if err != nil {
		t.Fatalf("ProviderState: %v", err)
	}
	if view.ProviderTakeRate != 300 {
		t.Fatalf("take rate: got %d want 300", view.ProviderTakeRate)
	}
	if view.RewardsRecipient != "0xrr1" {
		t.Fatalf("rewards recipient: got %s", view.RewardsRecipient)
	}
	if view.ProviderAdmin != "0xadmin1" {
		t.Fatalf("admin: got %s", view.ProviderAdmin)
	}
	if view.PendingAdmin == nil || *view.PendingAdmin != "0xadmin2" {
		t.Fatalf("pending admin: %v", view.PendingAdmin)
	}
	if len(view.Attesters) != 2 || view.Attesters[0] != attesterAddr {
		t.Fatalf("attesters: %v", view.Attesters)
	}

	if _, err := NewReader(s, nil).ProviderState(context.Background(), "8"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReader_PositionSummaryClampsNegativeRemaining(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	s := NewMemoryStore()
	mustAppend(t, s,
		&model.Position{Address: atpAddr, Beneficiary: "0xbe", Allocation: "1000", Type: model.PositionNCATP, StakerAddress: stakerAddr, Provenance: prov(1, "0x01", 0)},
		&model.StakedWithProvider{ID: "s1", ATPAddress: atpAddr, StakerAddress: stakerAddr, ProviderIdentifier: "7", AttesterAddress: attesterAddr, Provenance: prov(2, "0x02", 0)},
		&model.TokensWithdrawnToBeneficiary{ID: "w1", ATPAddress: atpAddr, Beneficiary: "0xbe", Amount: "600", Provenance: prov(3, "0x03", 0)},
		&model.Slashed{ID: "x1", AttesterAddress: attesterAddr, Amount: "500", Provenance: prov(4, "0x04", 0)},
	)

	view, err := NewReader(s, zap.New(core)).PositionSummary(context.Background(), atpAddr)
	if err != nil {
		t.Fatalf("PositionSummary: %v", err)
	}
	if view.RemainingAllocation != "0" {
		t.Fatalf("remaining: got %s want 0", view.RemainingAllocation)
	}
	if view.TotalWithdrawn != "600" || view.TotalSlashed != "500" {
		t.Fatalf("totals: %+v", view)
	}
	if !view.IntegrityViolation {
		t.Fatalf("expected integrity violation flag")
	}
	if got := logs.FilterMessageSnippet("data integrity").Len(); got != 1 {
		t.Fatalf("integrity log entries: got %d want 1", got)
	}
}

func TestReader_PositionSummaryHealthy(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	s := NewMemoryStore()
	mustAppend(t, s,
		&model.Position{Address: atpAddr, Beneficiary: "0xbe", Allocation: "1000", Type: model.PositionMATP, StakerAddress: stakerAddr, Provenance: prov(1, "0x01", 0)},
		&model.Staked{ID: "s1", ATPAddress: atpAddr, StakerAddress: stakerAddr, AttesterAddress: attesterAddr, Provenance: prov(2, "0x02", 0)},
		&model.TokensWithdrawnToBeneficiary{ID: "w1", ATPAddress: atpAddr, Beneficiary: "0xbe", Amount: "250", Provenance: prov(3, "0x03", 0)},
		&model.Slashed{ID: "x1", AttesterAddress: attesterAddr, Amount: "50", Provenance: prov(4, "0x04", 0)},
	)

	view, err := NewReader(s, zap.New(core)).PositionSummary(context.Background(), atpAddr)
	if err != nil {
		t.Fatalf("PositionSummary: %v", err)
	}
	if view.RemainingAllocation != "700" || view.IntegrityViolation {
		t.Fatalf("summary: %+v", view)
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected log entries: %d", logs.Len())
	}
}

func TestReader_AttesterHistoryMergesTables(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	mustAppend(t, s,
		&model.WithdrawFinalized{ID: "f", AttesterAddress: attesterAddr, Amount: "1", Provenance: prov(40, "0x40", 0)},
		&model.Deposit{ID: "d", AttesterAddress: attesterAddr, Amount: "1", Provenance: prov(10, "0x10", 0)},
		&model.Slashed{ID: "s", AttesterAddress: attesterAddr, Amount: "1", Provenance: prov(20, "0x20", 0)},
		&model.WithdrawInitiated{ID: "i", AttesterAddress: attesterAddr, Amount: "1", Provenance: prov(30, "0x30", 0)},
	)

	history, err := NewReader(s, nil).AttesterHistory(context.Background(), attesterAddr)
	if err != nil {
		t.Fatalf("AttesterHistory: %v", err)
	}
	want := []string{model.TableDeposit, model.TableSlashed, model.TableWithdrawInitiated, model.TableWithdrawFinalized}
	if len(history) != len(want) {
		t.Fatalf("len: got %d want %d", len(history), len(want))
	}
	for i, ev := range history {
		if ev.TableName() != want[i] {
			t.Fatalf("history[%d]: got %s want %s", i, ev.TableName(), want[i])
		}
	}
}
