package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/replay"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/transport"
)

// fixture is the on-disk JSON shape a `replay run` invocation consumes:
// an object set at historical versions, the PTB's resolved inputs and
// commands, and (optionally) the on-chain effects to compare against.
// It exists so this command can exercise the engine without a live
// chain-data transport wired in — the same role the teacher's
// "testnet start [config]" mock plays for its own cobra tree.
type fixture struct {
	Sender   string          `json:"sender"`
	TxDigest string          `json:"tx_digest"`
	Objects  []fixtureObject `json:"objects"`
	Inputs   []fixtureInput  `json:"inputs"`
	Commands []fixtureCmd    `json:"commands"`
	Chain    *fixtureChain   `json:"chain"`
}

type fixtureObject struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Owner   string `json:"owner"`
	Version uint64 `json:"version"`
	Balance uint64 `json:"balance"`
}

type fixtureInput struct {
	Object string `json:"object"`
	PureU64 *uint64 `json:"pure_u64"`
	PureAddress string `json:"pure_address"`
}

type fixtureArg struct {
	Input        *int  `json:"input"`
	Result       *int  `json:"result"`
	NestedResult []int `json:"nested_result"`
}

type fixtureCmd struct {
	Kind        string       `json:"kind"`
	MergeCoins  *fixtureMerge `json:"merge_coins"`
	SplitCoins  *fixtureSplit `json:"split_coins"`
	Transfer    *fixtureTransfer `json:"transfer_objects"`
}

type fixtureMerge struct {
	Destination fixtureArg   `json:"destination"`
	Sources     []fixtureArg `json:"sources"`
}

type fixtureSplit struct {
	Coin    fixtureArg   `json:"coin"`
	Amounts []fixtureArg `json:"amounts"`
}

type fixtureTransfer struct {
	Objects   []fixtureArg `json:"objects"`
	Recipient fixtureArg   `json:"recipient"`
}

type fixtureChain struct {
	Status  string   `json:"status"`
	Created []string `json:"created"`
	Mutated []string `json:"mutated"`
	Deleted []string `json:"deleted"`
	Wrapped []string `json:"wrapped"`
}

func loadFixture(path string) (*fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f fixture
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

func (f *fixture) toInput() (replay.Input, error) {
	var in replay.Input

	sender, err := object.ParseAddress(f.Sender)
	if err != nil {
		return in, fmt.Errorf("sender: %w", err)
	}
	in.Sender = sender

	if f.TxDigest != "" {
		d, err := hex.DecodeString(f.TxDigest)
		if err != nil {
			return in, fmt.Errorf("tx_digest: %w", err)
		}
		copy(in.TxDigest[:], d)
	}

	in.Objects = make(map[object.Address]*object.StoredObject, len(f.Objects))
	for _, fo := range f.Objects {
		id, err := object.ParseAddress(fo.ID)
		if err != nil {
			return in, fmt.Errorf("object %s: %w", fo.ID, err)
		}
		t, err := object.Parse(fo.Type)
		if err != nil {
			return in, fmt.Errorf("object %s type: %w", fo.ID, err)
		}
		ownerAddr, err := object.ParseAddress(fo.Owner)
		if err != nil {
			return in, fmt.Errorf("object %s owner: %w", fo.ID, err)
		}
		in.Objects[id] = replay.NewCoinObject(id, t, object.AddressOwner(ownerAddr), fo.Version, fo.Balance)
	}

	in.Inputs = make([]replay.InputValue, len(f.Inputs))
	for i, fi := range f.Inputs {
		switch {
		case fi.Object != "":
			id, err := object.ParseAddress(fi.Object)
			if err != nil {
				return in, fmt.Errorf("input %d object: %w", i, err)
			}
			in.Inputs[i] = replay.InputValue{Object: &id}
		case fi.PureU64 != nil:
			b := make([]byte, 8)
			v := *fi.PureU64
			for j := 0; j < 8; j++ {
				b[j] = byte(v)
				v >>= 8
			}
			in.Inputs[i] = replay.InputValue{Pure: b}
		case fi.PureAddress != "":
			a, err := object.ParseAddress(fi.PureAddress)
			if err != nil {
				return in, fmt.Errorf("input %d pure_address: %w", i, err)
			}
			in.Inputs[i] = replay.InputValue{Pure: a[:]}
		default:
			return in, fmt.Errorf("input %d: must set object, pure_u64, or pure_address", i)
		}
	}

	in.Commands = make([]replay.Command, len(f.Commands))
	for i, fc := range f.Commands {
		cmd, err := fc.toCommand()
		if err != nil {
			return in, fmt.Errorf("command %d: %w", i, err)
		}
		in.Commands[i] = cmd
	}

	if f.Chain != nil {
		chain, err := f.Chain.toOnChainEffects()
		if err != nil {
			return in, fmt.Errorf("chain: %w", err)
		}
		in.Chain = chain
	}

	return in, nil
}

func (a fixtureArg) toArgument() (replay.Argument, error) {
	switch {
	case a.Input != nil:
		return replay.Input(*a.Input), nil
	case a.Result != nil:
		return replay.Result(*a.Result), nil
	case len(a.NestedResult) == 2:
		return replay.NestedResult(a.NestedResult[0], a.NestedResult[1]), nil
	default:
		return replay.Argument{}, fmt.Errorf("argument must set input, result, or a 2-element nested_result")
	}
}

func toArguments(args []fixtureArg) ([]replay.Argument, error) {
	out := make([]replay.Argument, len(args))
	for i, a := range args {
		arg, err := a.toArgument()
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = arg
	}
	return out, nil
}

func (fc fixtureCmd) toCommand() (replay.Command, error) {
	switch replay.CommandKind(fc.Kind) {
	case replay.KindMergeCoins:
		if fc.MergeCoins == nil {
			return replay.Command{}, fmt.Errorf("MergeCoins requires merge_coins")
		}
		dest, err := fc.MergeCoins.Destination.toArgument()
		if err != nil {
			return replay.Command{}, err
		}
		sources, err := toArguments(fc.MergeCoins.Sources)
		if err != nil {
			return replay.Command{}, err
		}
		return replay.Command{
			Kind:       replay.KindMergeCoins,
			MergeCoins: &replay.MergeCoinsCommand{Destination: dest, Sources: sources},
		}, nil
	case replay.KindSplitCoins:
		if fc.SplitCoins == nil {
			return replay.Command{}, fmt.Errorf("SplitCoins requires split_coins")
		}
		coin, err := fc.SplitCoins.Coin.toArgument()
		if err != nil {
			return replay.Command{}, err
		}
		amounts, err := toArguments(fc.SplitCoins.Amounts)
		if err != nil {
			return replay.Command{}, err
		}
		return replay.Command{
			Kind:       replay.KindSplitCoins,
			SplitCoins: &replay.SplitCoinsCommand{Coin: coin, Amounts: amounts},
		}, nil
	case replay.KindTransferObjects:
		if fc.Transfer == nil {
			return replay.Command{}, fmt.Errorf("TransferObjects requires transfer_objects")
		}
		objs, err := toArguments(fc.Transfer.Objects)
		if err != nil {
			return replay.Command{}, err
		}
		recipient, err := fc.Transfer.Recipient.toArgument()
		if err != nil {
			return replay.Command{}, err
		}
		return replay.Command{
			Kind: replay.KindTransferObjects,
			TransferObjects: &replay.TransferObjectsCommand{
				Objects:   objs,
				Recipient: recipient,
			},
		}, nil
	default:
		return replay.Command{}, fmt.Errorf("unsupported fixture command kind %q", fc.Kind)
	}
}

func (fc *fixtureChain) toOnChainEffects() (*transport.OnChainEffects, error) {
	parse := func(in []string) ([]object.Address, error) {
		out := make([]object.Address, len(in))
		for i, s := range in {
			a, err := object.ParseAddress(s)
			if err != nil {
				return nil, err
			}
			out[i] = a
		}
		return out, nil
	}
	created, err := parse(fc.Created)
	if err != nil {
		return nil, fmt.Errorf("created: %w", err)
	}
	mutated, err := parse(fc.Mutated)
	if err != nil {
		return nil, fmt.Errorf("mutated: %w", err)
	}
	deleted, err := parse(fc.Deleted)
	if err != nil {
		return nil, fmt.Errorf("deleted: %w", err)
	}
	wrapped, err := parse(fc.Wrapped)
	if err != nil {
		return nil, fmt.Errorf("wrapped: %w", err)
	}
	return &transport.OnChainEffects{
		Status:  fc.Status,
		Created: created,
		Mutated: mutated,
		Deleted: deleted,
		Wrapped: wrapped,
	}, nil
}
