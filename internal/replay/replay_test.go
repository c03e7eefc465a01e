package replay

import (
	"testing"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/transport"
)

func addr(last byte) object.Address {
	var a object.Address
	a[object.AddressLength-1] = last
	return a
}

func coinObject(id object.Address, balance uint64, version object.Version) *object.StoredObject {
	var uid [32]byte
	copy(uid[:], id[:])
	bytes := newCoinBytes(uid, balance)
	coinType := object.Struct(addr(0x2), "coin", "Coin", object.U64())
	return object.NewStoredObject(id, bytes, coinType, true, object.AddressOwner(addr(0x99)), version)
}

// TestMergeCoinsVersionTracking exercises seed scenario S1: merging coin2
// (version 100) into coin1 (version 42) must mutate coin1, delete coin2,
// and assign both the transaction's lamport timestamp (101).
func TestMergeCoinsVersionTracking(t *testing.T) {
	coin1ID, coin2ID := addr(1), addr(2)
	objects := map[object.Address]*object.StoredObject{
		coin1ID: coinObject(coin1ID, 1000, 42),
		coin2ID: coinObject(coin2ID, 500, 100),
	}

	inputs := []InputValue{
		{Object: &coin1ID},
		{Object: &coin2ID},
	}
	commands := []Command{
		{
			Kind: KindMergeCoins,
			MergeCoins: &MergeCoinsCommand{
				Destination: Input(0),
				Sources:     []Argument{Input(1)},
			},
		},
	}
	executor := NewPTBExecutor(objects, inputs, addr(0x99), [32]byte{0xAA}, nil)

	if err := executor.Execute(commands); err != nil {
		t.Fatalf("execute: %v", err)
	}
	versions, err := executor.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	if got := executor.Lamport(); got != 101 {
		t.Fatalf("lamport = %d, want 101", got)
	}

	byID := map[object.Address]ObjectVersionRecord{}
	for _, v := range versions {
		byID[v.ID] = v
	}

	dest, ok := byID[coin1ID]
	if !ok || dest.Change != ChangeMutated || dest.OutputVersion != 101 {
		t.Fatalf("coin1 record = %+v, ok=%v", dest, ok)
	}
	src, ok := byID[coin2ID]
	if !ok || src.Change != ChangeDeleted || src.OutputVersion != 101 {
		t.Fatalf("coin2 record = %+v, ok=%v", src, ok)
	}

	balance, err := decodeCoinBalance(objects[coin1ID].Bytes)
	if err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance != 1500 {
		t.Fatalf("merged balance = %d, want 1500", balance)
	}
	if !objects[coin2ID].Deleted {
		t.Fatal("coin2 should be marked deleted")
	}
}

func TestSplitCoinsCreatesNewCoins(t *testing.T) {
	coinID := addr(5)
	objects := map[object.Address]*object.StoredObject{
		coinID: coinObject(coinID, 1000, 10),
	}
	inputs := []InputValue{
		{Object: &coinID},
		{Pure: u64Bytes(100)},
		{Pure: u64Bytes(250)},
	}
	executor := NewPTBExecutor(objects, inputs, addr(0x99), [32]byte{0xBB}, nil)

	commands := []Command{{
		Kind: KindSplitCoins,
		SplitCoins: &SplitCoinsCommand{
			Coin:    Input(0),
			Amounts: []Argument{Input(1), Input(2)},
		},
	}}
	if err := executor.Execute(commands); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := executor.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if len(executor.results[0]) != 2 {
		t.Fatalf("expected 2 new coins, got %d", len(executor.results[0]))
	}
	remaining, err := decodeCoinBalance(objects[coinID].Bytes)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if remaining != 650 {
		t.Fatalf("remaining balance = %d, want 650", remaining)
	}
	touched := executor.Touched()
	if len(touched) != 3 {
		t.Fatalf("expected 3 touched objects (1 mutated + 2 created), got %d", len(touched))
	}
}

func TestTransferObjectsReassignsOwner(t *testing.T) {
	coinID := addr(7)
	recipient := addr(0x42)
	objects := map[object.Address]*object.StoredObject{
		coinID: coinObject(coinID, 10, 1),
	}
	var recipientBytes [32]byte
	copy(recipientBytes[:], recipient[:])
	inputs := []InputValue{
		{Object: &coinID},
		{Pure: recipientBytes[:]},
	}
	executor := NewPTBExecutor(objects, inputs, addr(0x99), [32]byte{0xCC}, nil)
	commands := []Command{{
		Kind: KindTransferObjects,
		TransferObjects: &TransferObjectsCommand{
			Objects:   []Argument{Input(0)},
			Recipient: Input(1),
		},
	}}
	if err := executor.Execute(commands); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !objects[coinID].Owner.Equal(object.AddressOwner(recipient)) {
		t.Fatalf("owner = %+v, want address-owned by %s", objects[coinID].Owner, recipient)
	}
}

func TestClassifyPrefersExecutionErrorOverComparison(t *testing.T) {
	argErr := &ArgumentDecodingError{Detail: "bad index"}
	if got := Classify(argErr, nil); got != ClassificationArgumentDecodingFail {
		t.Fatalf("classification = %s, want %s", got, ClassificationArgumentDecodingFail)
	}
}

func TestClassifySuccessWhenNoErrorAndNoComparison(t *testing.T) {
	if got := Classify(nil, nil); got != ClassificationSuccess {
		t.Fatalf("classification = %s, want success", got)
	}
}

func TestCompareDetectsSetMismatch(t *testing.T) {
	local := Effects{Success: true, Mutated: []object.Address{addr(1)}}
	chain := &transport.OnChainEffects{Status: "success", Mutated: []object.Address{addr(2)}}
	cmp := Compare(local, chain, nil, nil)
	if cmp.SetsMatch {
		t.Fatal("expected sets mismatch")
	}
	if cmp.Score >= 1.0 {
		t.Fatalf("score = %f, expected penalty for mismatch", cmp.Score)
	}
}

func TestCompareAgreesOnMatchingEffects(t *testing.T) {
	id := addr(9)
	local := Effects{Success: true, Mutated: []object.Address{id}}
	chain := &transport.OnChainEffects{Status: "success", Mutated: []object.Address{id}}
	cmp := Compare(local, chain, nil, nil)
	if !cmp.StatusMatch || !cmp.SetsMatch {
		t.Fatalf("expected full agreement, got %+v", cmp)
	}
	if cmp.Score != 1.0 {
		t.Fatalf("score = %f, want 1.0", cmp.Score)
	}
}

func u64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
