package replay

import (
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/mm2"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/transport"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/vmhost"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/pkg/config"
)

// Engine is C9's central orchestrator: given a transaction's command
// list and the objects the earlier components (C1-C8, C10) already
// assembled, it re-executes the PTB and reports the replayed effects,
// optionally comparing them against recorded on-chain effects.
//
// Every collaborator is optional: a nil Predictor simply skips MM2
// prediction, a nil VM session means MoveCall commands are recorded as
// unexecuted rather than dispatched. This lets the engine run in
// contexts (unit tests, analyze-only dry runs) that never construct the
// full dependency graph.
type Engine struct {
	Config config.Config

	Predictor *mm2.Predictor
	Session   *vmhost.Session

	// Logger is attached to every Replay call via .With(...), the same
	// way the teacher's node/tx-scoped zap loggers are built per
	// operation rather than held as global mutable state. Defaults to
	// a no-op logger so callers that don't care about logs never need
	// to construct one.
	Logger *zap.Logger
}

// New builds an Engine whose Replay reads the operational-mode switches
// analyze_only, vm_only, compare and analyze_mm2 from cfg.Engine (§6);
// synthesize_missing and self_heal_dynamic_fields are not read by Engine.
func New(cfg config.Config, predictor *mm2.Predictor, session *vmhost.Session) *Engine {
	return &Engine{Config: cfg, Predictor: predictor, Session: session, Logger: zap.NewNop()}
}

// WithLogger returns e with its logger replaced, for callers that want
// Replay calls logged (e.g. cmd/replay wiring a production zap config).
func (e *Engine) WithLogger(logger *zap.Logger) *Engine {
	e.Logger = logger
	return e
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Input is everything one replay run needs: the resolved PTB, the
// object set at historical versions, and (when Compare mode is on) the
// recorded on-chain effects to diff against.
type Input struct {
	Commands []Command
	Inputs   []InputValue
	Objects  map[object.Address]*object.StoredObject
	Sender   object.Address
	TxDigest [32]byte

	MoveCalls []mm2.MoveCall
	Chain     *transport.OnChainEffects
}

// Replay runs one transaction through the engine according to the
// configured operational mode (§6) and returns its ReplayResult (§4.10).
func (e *Engine) Replay(in Input) (*ReplayResult, error) {
	log := e.logger().With(
		zap.String("tx_digest", hex.EncodeToString(in.TxDigest[:])),
		zap.String("sender", in.Sender.String()),
		zap.Int("commands", len(in.Commands)),
	)
	log.Debug("replay started")

	result := &ReplayResult{}

	if e.Config.Engine.AnalyzeMM2 && e.Predictor != nil {
		preds, err := e.Predictor.Predict(in.MoveCalls)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, "mm2 prediction failed: "+err.Error())
		} else {
			for _, p := range preds {
				result.Diagnostics = append(result.Diagnostics, "mm2 predicted "+string(p.Kind)+" on "+p.KeyType.String()+" from "+p.SourceFunction)
			}
		}
	}

	if e.Config.Engine.AnalyzeOnly {
		log.Debug("analyze_only: skipping execution")
		result.LocalSuccess = true
		result.Classification = ClassificationSuccess
		return result, nil
	}

	executor := NewPTBExecutor(in.Objects, in.Inputs, in.Sender, in.TxDigest, e.Session)
	execErr := executor.Execute(in.Commands)
	result.Diagnostics = append(result.Diagnostics, executor.Diagnostics()...)

	if execErr != nil {
		result.LocalSuccess = false
		result.Classification = Classify(execErr, nil)
		result.Diagnostics = append(result.Diagnostics, execErr.Error())
		log.Warn("replay execution failed", zap.Error(execErr), zap.String("classification", string(result.Classification)))
		return result, nil
	}

	versions, err := executor.Finish()
	if err != nil {
		result.LocalSuccess = false
		result.Classification = Classify(err, nil)
		result.Diagnostics = append(result.Diagnostics, err.Error())
		log.Warn("replay finish failed", zap.Error(err), zap.String("classification", string(result.Classification)))
		return result, nil
	}

	effects := Effects{Success: true}
	for _, v := range versions {
		switch v.Change {
		case ChangeCreated:
			effects.Created = append(effects.Created, v.ID)
		case ChangeMutated:
			effects.Mutated = append(effects.Mutated, v.ID)
		case ChangeDeleted:
			effects.Deleted = append(effects.Deleted, v.ID)
		}
	}

	result.LocalSuccess = true
	result.Effects = effects
	result.VersionSummary = VersionSummary{Objects: versions, Lamport: executor.Lamport()}

	if e.Config.Engine.Compare && !e.Config.Engine.VMOnly {
		cmp := Compare(effects, in.Chain, nil, nil)
		result.Comparison = cmp
		result.Classification = Classify(nil, cmp)
	} else {
		result.Classification = ClassificationSuccess
	}

	log.Info("replay completed",
		zap.String("classification", string(result.Classification)),
		zap.Uint64("lamport", result.VersionSummary.Lamport),
		zap.Int("created", len(effects.Created)),
		zap.Int("mutated", len(effects.Mutated)),
		zap.Int("deleted", len(effects.Deleted)),
	)

	return result, nil
}
