package replay

import (
	"testing"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/transport"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/pkg/config"
)

func TestEngineAnalyzeOnlySkipsExecution(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.AnalyzeOnly = true
	e := New(cfg, nil, nil)

	coinID := addr(1)
	objects := map[object.Address]*object.StoredObject{coinID: coinObject(coinID, 10, 1)}
	res, err := e.Replay(Input{
		Commands: []Command{{Kind: KindMergeCoins, MergeCoins: &MergeCoinsCommand{Destination: Input(0)}}},
		Objects:  objects,
		Sender:   addr(0x99),
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.LocalSuccess || res.Classification != ClassificationSuccess {
		t.Fatalf("unexpected result: %+v", res)
	}
	// analyze_only must never mutate the object set.
	if objects[coinID].Version != 1 {
		t.Fatalf("object mutated despite analyze_only: version=%d", objects[coinID].Version)
	}
}

func TestEngineExecutesAndComparesEffects(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Compare = true
	e := New(cfg, nil, nil)

	coin1ID, coin2ID := addr(1), addr(2)
	objects := map[object.Address]*object.StoredObject{
		coin1ID: coinObject(coin1ID, 1000, 42),
		coin2ID: coinObject(coin2ID, 500, 100),
	}
	inputs := []InputValue{{Object: &coin1ID}, {Object: &coin2ID}}
	commands := []Command{{
		Kind: KindMergeCoins,
		MergeCoins: &MergeCoinsCommand{
			Destination: Input(0),
			Sources:     []Argument{Input(1)},
		},
	}}

	chain := &transport.OnChainEffects{
		Status:  "success",
		Mutated: []object.Address{coin1ID},
		Deleted: []object.Address{coin2ID},
	}

	res, err := e.Replay(Input{
		Commands: commands,
		Inputs:   inputs,
		Objects:  objects,
		Sender:   addr(0x99),
		TxDigest: [32]byte{0xAA},
		Chain:    chain,
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.LocalSuccess {
		t.Fatalf("expected local success, diagnostics=%v", res.Diagnostics)
	}
	if res.Comparison == nil || res.Comparison.Score != 1.0 {
		t.Fatalf("expected perfect comparison score, got %+v", res.Comparison)
	}
	if res.Classification != ClassificationSuccess {
		t.Fatalf("classification = %s, want success", res.Classification)
	}
	if res.VersionSummary.Lamport != 101 {
		t.Fatalf("lamport = %d, want 101", res.VersionSummary.Lamport)
	}
}

func TestEngineReportsArgumentDecodingFailure(t *testing.T) {
	cfg := config.Default()
	e := New(cfg, nil, nil)

	coinID := addr(1)
	objects := map[object.Address]*object.StoredObject{coinID: coinObject(coinID, 10, 1)}
	commands := []Command{{
		Kind: KindMergeCoins,
		MergeCoins: &MergeCoinsCommand{
			Destination: Input(5), // out of range: no inputs supplied
		},
	}}

	res, err := e.Replay(Input{Commands: commands, Objects: objects, Sender: addr(0x99)})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.LocalSuccess {
		t.Fatal("expected local failure")
	}
	if res.Classification != ClassificationArgumentDecodingFail {
		t.Fatalf("classification = %s, want argument_decoding_failure", res.Classification)
	}
}
