// Package replay implements C9: the central orchestrator that consumes a
// recorded transaction, reassembles the historical object/package state
// the earlier components (C1-C8, C10) locate, re-executes its
// Programmable Transaction Block, and compares the result against the
// recorded on-chain effects (§4.10).
package replay

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

// ArgKind discriminates how an Argument resolves to a value: a
// transaction input, or a prior command's result (§3's PTB argument
// model).
type ArgKind uint8

const (
	ArgInput ArgKind = iota
	ArgResult
)

// Argument references a value flowing through the PTB: either input
// index Index, or the NestedIndex'th value produced by command Index.
type Argument struct {
	Kind        ArgKind
	Index       int
	NestedIndex int
}

func Input(i int) Argument  { return Argument{Kind: ArgInput, Index: i} }
func Result(i int) Argument { return Argument{Kind: ArgResult, Index: i} }
func NestedResult(i, j int) Argument {
	return Argument{Kind: ArgResult, Index: i, NestedIndex: j}
}

// InputValue is one transaction input: either a pure BCS value (e.g. an
// amount or a recipient address) or a reference to an object already
// loaded into the executor's object set.
type InputValue struct {
	Pure   []byte
	Object *object.Address
}

// CommandKind names one of the seven PTB command types (§3 GLOSSARY).
type CommandKind string

const (
	KindMoveCall         CommandKind = "MoveCall"
	KindSplitCoins       CommandKind = "SplitCoins"
	KindMergeCoins       CommandKind = "MergeCoins"
	KindTransferObjects  CommandKind = "TransferObjects"
	KindMakeMoveVec      CommandKind = "MakeMoveVec"
	KindPublish          CommandKind = "Publish"
	KindUpgrade          CommandKind = "Upgrade"
)

// Command is one PTB command. Exactly one of the Kind-matching fields is
// populated.
type Command struct {
	Kind CommandKind

	MoveCall        *MoveCallCommand
	SplitCoins      *SplitCoinsCommand
	MergeCoins      *MergeCoinsCommand
	TransferObjects *TransferObjectsCommand
	MakeMoveVec     *MakeMoveVecCommand
	Publish         *PublishCommand
	Upgrade         *UpgradeCommand
}

// MoveCallCommand invokes one Move entry function. The replay engine
// does not interpret arbitrary bytecode itself (the Move VM is the
// black-box collaborator of §1/§6); NativeOp names the vmhost native
// this call is modeled as performing, when the call is recognized as one
// of the dynamic-field/object operations §4.8 defines. An unrecognized
// MoveCall is a no-op whose absence is reported in diagnostics rather
// than failing the whole replay.
type MoveCallCommand struct {
	Package       object.Address
	Module        string
	Function      string
	TypeArguments []object.TypeTag
	Arguments     []Argument

	NativeOp string
}

type SplitCoinsCommand struct {
	Coin    Argument
	Amounts []Argument // each resolves to a Pure u64-LE input
}

type MergeCoinsCommand struct {
	Destination Argument
	Sources     []Argument
}

type TransferObjectsCommand struct {
	Objects   []Argument
	Recipient Argument // resolves to a Pure 32-byte address input
}

type MakeMoveVecCommand struct {
	ElementType object.TypeTag
	Elements    []Argument
}

// PublishCommand models a module publish. Full bytecode verification and
// linking is the Move VM's job; this engine records one placeholder
// object for the publish and reads neither Modules nor Dependencies.
type PublishCommand struct {
	Modules      map[string][]byte
	Dependencies []object.Address
}

// UpgradeCommand models a package upgrade against an existing
// UpgradeCap, analogous to PublishCommand but keyed to the package being
// replaced.
type UpgradeCommand struct {
	Package      object.Address
	Modules      map[string][]byte
	Dependencies []object.Address
	UpgradeCap   Argument
}
