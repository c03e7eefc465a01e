package mm2

// Config bounds the call-graph traversal of §4.7.
type Config struct {
	MaxTransitiveDepth int
}

// Predictor runs MM2's two analysis modes over a transaction's MoveCalls
// against a set of loaded modules.
type Predictor struct {
	disasm  Disassembler
	modules []LoadedModule
	cfg     Config
}

func New(disasm Disassembler, modules []LoadedModule, cfg Config) *Predictor {
	if cfg.MaxTransitiveDepth <= 0 {
		cfg.MaxTransitiveDepth = 8
	}
	return &Predictor{disasm: disasm, modules: modules, cfg: cfg}
}

// Predict runs direct mode over every call directly issued by the
// transaction, then call-graph mode over the full loaded module set,
// returning the union.
func (p *Predictor) Predict(calls []MoveCall) ([]PredictedAccess, error) {
	disasms, err := p.disassembleAll()
	if err != nil {
		return nil, err
	}

	var out []PredictedAccess
	out = append(out, p.direct(calls, disasms)...)

	graphPreds, err := p.callGraph(calls, disasms)
	if err != nil {
		return nil, err
	}
	out = append(out, graphPreds...)
	return out, nil
}

func (p *Predictor) disassembleAll() (map[FunctionID]FunctionDisasm, error) {
	out := map[FunctionID]FunctionDisasm{}
	for _, m := range p.modules {
		fns, err := p.disasm(m.Bytes)
		if err != nil {
			return nil, err
		}
		for name, fn := range fns {
			out[FunctionID{Package: m.Package, Module: m.Module, Function: name}] = fn
		}
	}
	return out, nil
}

// direct implements §4.7's direct mode: for each called function, scan
// its own instructions for calls that resolve straight to a sink.
func (p *Predictor) direct(calls []MoveCall, disasms map[FunctionID]FunctionDisasm) []PredictedAccess {
	var out []PredictedAccess
	for _, c := range calls {
		fnID := FunctionID{Package: c.Package, Module: c.Module, Function: c.Function}
		fn, ok := disasms[fnID]
		if !ok {
			continue
		}
		for _, inst := range fn.Calls {
			s, ok := matchSink(inst.Callee)
			if !ok {
				continue
			}
			if pa, ok := predictionFromCall(s, inst, ConfidenceHigh, fnID.String()); ok {
				out = append(out, pa)
			}
		}
	}
	return out
}

// callGraph implements §4.7's call-graph mode: mark sinks, propagate
// reachability to a sink backwards along call edges to a fixed point
// bounded by MaxTransitiveDepth, then re-walk every function reachable
// to a sink for the sink's instantiations along the path that reached
// it. This is what catches wrapper functions such as table/bag
// accessors that merely forward their type arguments to a sink.
func (p *Predictor) callGraph(calls []MoveCall, disasms map[FunctionID]FunctionDisasm) ([]PredictedAccess, error) {
	reaches := reachesSink(disasms, p.cfg.MaxTransitiveDepth)

	var out []PredictedAccess
	for _, c := range calls {
		fnID := FunctionID{Package: c.Package, Module: c.Module, Function: c.Function}
		out = append(out, p.walk(fnID, disasms, reaches, map[FunctionID]bool{}, 0)...)
	}
	return out, nil
}

// reachesSink computes, for every known function, whether a path of
// at most maxDepth call edges leads to a dynamic-field sink.
func reachesSink(disasms map[FunctionID]FunctionDisasm, maxDepth int) map[FunctionID]bool {
	reaches := map[FunctionID]bool{}
	var visit func(id FunctionID, depth int, seen map[FunctionID]bool) bool
	visit = func(id FunctionID, depth int, seen map[FunctionID]bool) bool {
		if v, ok := reaches[id]; ok {
			return v
		}
		if seen[id] || depth > maxDepth {
			return false
		}
		seen[id] = true
		fn, ok := disasms[id]
		if !ok {
			return false
		}
		for _, inst := range fn.Calls {
			if _, isSink := matchSink(inst.Callee); isSink {
				reaches[id] = true
				return true
			}
			if visit(inst.Callee, depth+1, seen) {
				reaches[id] = true
				return true
			}
		}
		return false
	}
	for id := range disasms {
		visit(id, 0, map[FunctionID]bool{})
	}
	return reaches
}

// walk descends from a root function through calls that reach a sink,
// collecting medium-confidence predictions for every sink instantiation
// found in a wrapper below the root. Sink calls made by the root itself
// (depth 0) are skipped, since direct() already reports them at high
// confidence.
func (p *Predictor) walk(id FunctionID, disasms map[FunctionID]FunctionDisasm, reaches map[FunctionID]bool, seen map[FunctionID]bool, depth int) []PredictedAccess {
	if seen[id] || depth > p.cfg.MaxTransitiveDepth {
		return nil
	}
	seen[id] = true
	fn, ok := disasms[id]
	if !ok {
		return nil
	}
	var out []PredictedAccess
	for _, inst := range fn.Calls {
		if s, isSink := matchSink(inst.Callee); isSink {
			// depth 0 is a function the transaction calls directly;
			// direct() already reports this instantiation at high
			// confidence. Only wrapper hops (depth > 0) are new here.
			if depth > 0 {
				if pa, ok := predictionFromCall(s, inst, ConfidenceMedium, id.String()); ok {
					out = append(out, pa)
				}
			}
			continue
		}
		if reaches[inst.Callee] {
			out = append(out, p.walk(inst.Callee, disasms, reaches, seen, depth+1)...)
		}
	}
	return out
}
