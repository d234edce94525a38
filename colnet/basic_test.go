// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"errors"
	"testing"

	"github.com/emer/etable/etensor"
)

// tstConfig returns a minimal 1-class, single-neuron configuration used by
// the activation-engine tests: 2 branches x 2 segments x 3 input slots,
// threshold 2, over a 12-unit input layer.
func tstConfig(sparse bool) NetConfig {
	cf := NetConfig{}
	cf.Defaults()
	cf.NLayers = 2
	cf.NClasses = 1
	cf.NNeurPerCol = 1
	cf.NBranches = 2
	cf.NSegs = 2
	cf.NSynsPerSeg = 3
	cf.SegThr = 2
	cf.InputN = 12
	cf.Sparse = sparse
	return cf
}

// inPat returns a binary input pattern with the given indexes on.
func inPat(n int, on ...int) *etensor.Float32 {
	pat := etensor.NewFloat32([]int{n}, nil, []string{"Input"})
	for _, i := range on {
		pat.Values[i] = 1
	}
	return pat
}

func TestConnStoreContract(t *testing.T) {
	for _, sparse := range []bool{false, true} {
		cs := &ConnStore{}
		cs.Build(4, 3, 10, sparse)
		if err := cs.Connect(2, []int32{1, 5, 9}); err != nil {
			t.Errorf("sparse=%v: first Connect failed: %v", sparse, err)
		}
		if !cs.IsTrained(2) {
			t.Errorf("sparse=%v: segment 2 should be trained after Connect", sparse)
		}
		err := cs.Connect(2, []int32{0, 2, 4})
		if !errors.Is(err, ErrSegmentTrained) {
			t.Errorf("sparse=%v: second Connect should return ErrSegmentTrained, got: %v", sparse, err)
		}
		for _, src := range []int{1, 5, 9} {
			if !cs.ConnectedTo(2, src) {
				t.Errorf("sparse=%v: segment 2 should be connected to %d", sparse, src)
			}
		}
		for _, src := range []int{0, 2, 4} {
			if cs.ConnectedTo(2, src) {
				t.Errorf("sparse=%v: rejected Connect must not alter wiring: connected to %d", sparse, src)
			}
		}
		srcs := cs.SegSrcs(2)
		if len(srcs) != 3 {
			t.Errorf("sparse=%v: SegSrcs length: %d != 3", sparse, len(srcs))
		}
		prevAct := make([]bool, 10)
		prevAct[1] = true
		prevAct[9] = true
		if nin := cs.NumActIn(2, prevAct); nin != 2 {
			t.Errorf("sparse=%v: NumActIn: %d != 2", sparse, nin)
		}
		if nin := cs.NumActIn(0, prevAct); nin != 0 {
			t.Errorf("sparse=%v: untrained segment NumActIn: %d != 0", sparse, nin)
		}
	}
}

func TestConnStoreOverfull(t *testing.T) {
	cs := &ConnStore{}
	cs.Build(1, 2, 10, true)
	if err := cs.Connect(0, []int32{1, 2, 3, 4}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if n := len(cs.SegSrcs(0)); n != 2 {
		t.Errorf("Connect must clip sources to slot count: got %d != 2", n)
	}
}

// TestAndOrFiring verifies the firing law on a neuron with 2 branches x
// 2 segments, threshold 2 of 3 inputs: a segment is active iff >= 2 of its
// connected inputs are active, a branch iff any segment is active, and the
// neuron iff all branches are active -- all 4 truth-table combinations of
// branch activity.
func TestAndOrFiring(t *testing.T) {
	for _, sparse := range []bool{false, true} {
		nt := NewNetwork("AndOrTest")
		if err := nt.Build(tstConfig(sparse)); err != nil {
			t.Fatalf("Build error: %v", err)
		}
		ly := nt.Layers[1]
		// branch 0: segment 0 on inputs 0-2, segment 1 on inputs 3-5
		// branch 1: segment 0 on inputs 6-8
		if err := ly.Conns.Connect(ly.SegIdx(0, 0, 0), []int32{0, 1, 2}); err != nil {
			t.Fatalf("Connect error: %v", err)
		}
		if err := ly.Conns.Connect(ly.SegIdx(0, 0, 1), []int32{3, 4, 5}); err != nil {
			t.Fatalf("Connect error: %v", err)
		}
		if err := ly.Conns.Connect(ly.SegIdx(0, 1, 0), []int32{6, 7, 8}); err != nil {
			t.Fatalf("Connect error: %v", err)
		}
		tests := []struct {
			on   []int
			br0  bool
			br1  bool
			fire bool
		}{
			{[]int{9, 10, 11}, false, false, false}, // only unconnected inputs
			{[]int{0, 1, 6, 7}, true, true, true},   // both branches
			{[]int{0, 1}, true, false, false},       // branch 0 only
			{[]int{6, 7}, false, true, false},       // branch 1 only
			{[]int{3, 4, 7, 8}, true, true, true},   // branch 0 via its second segment
			{[]int{0, 6}, false, false, false},      // 1 active input each: below threshold
		}
		for ti, tst := range tests {
			if err := nt.Forward(inPat(12, tst.on...)); err != nil {
				t.Fatalf("Forward error: %v", err)
			}
			if b := ly.BrAct[ly.BrIdx(0, 0)]; b != tst.br0 {
				t.Errorf("sparse=%v case %d: branch 0 active: %v != %v", sparse, ti, b, tst.br0)
			}
			if b := ly.BrAct[ly.BrIdx(0, 1)]; b != tst.br1 {
				t.Errorf("sparse=%v case %d: branch 1 active: %v != %v", sparse, ti, b, tst.br1)
			}
			if f := ly.Neurons[0].Act; f != tst.fire {
				t.Errorf("sparse=%v case %d: neuron fired: %v != %v", sparse, ti, f, tst.fire)
			}
		}
	}
}

func TestCycleActAvg(t *testing.T) {
	nt := NewNetwork("ActAvgTest")
	if err := nt.Build(tstConfig(false)); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if err := nt.Forward(inPat(12, 0, 1)); err != nil {
		t.Fatalf("Forward error: %v", err)
	}
	in := nt.InputLayer()
	if avg := in.ActAvg.Avg; avg != float32(2)/float32(12) {
		t.Errorf("input ActAvg.Avg: %v != %v", avg, float32(2)/float32(12))
	}
	if in.ActAvg.Max != 1 {
		t.Errorf("input ActAvg.Max: %v != 1", in.ActAvg.Max)
	}
	if mi := in.ActAvg.MaxIdx; mi != 0 {
		t.Errorf("input ActAvg.MaxIdx: %v != 0", mi)
	}
	out := nt.OutputLayer()
	if out.ActAvg.Avg != 0 || out.ActAvg.Max != 0 {
		t.Errorf("untrained layer ActAvg should be zero: avg %v max %v", out.ActAvg.Avg, out.ActAvg.Max)
	}
}

func TestNonBinaryInput(t *testing.T) {
	nt := NewNetwork("BinTest")
	if err := nt.Build(tstConfig(false)); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	pat := etensor.NewFloat32([]int{12}, nil, []string{"Input"})
	pat.Values[3] = 0.5
	err := nt.Forward(pat)
	if !errors.Is(err, ErrUnsupportedDataFormat) {
		t.Errorf("non-binary input should fail fast with ErrUnsupportedDataFormat, got: %v", err)
	}
}

func TestTieBreak(t *testing.T) {
	cf := tstConfig(false)
	cf.NClasses = 4
	cf.NNeurPerCol = 2
	nt := NewNetwork("TieTest")
	if err := nt.Build(cf); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	out := nt.OutputLayer()
	// columns 0 and 2 both at the max excitatory fire count
	out.Neurons[out.NeurIdx(0, Excitatory, 0)].Act = true
	out.Neurons[out.NeurIdx(2, Excitatory, 1)].Act = true
	out.Neurons[out.NeurIdx(3, Inhibitory, 0)].Act = true // inhibitory does not count
	if cls := nt.DecideClass(); cls != 0 {
		t.Errorf("tie between columns 0 and 2 must resolve to 0, got %d", cls)
	}
	if n := out.ColFireCount(2, Excitatory); n != 1 {
		t.Errorf("ColFireCount(2, Excitatory): %d != 1", n)
	}
	if n := out.ColFireCount(3, Excitatory); n != 0 {
		t.Errorf("ColFireCount(3, Excitatory): %d != 0", n)
	}
}

func TestGraphExport(t *testing.T) {
	nt := NewNetwork("GraphTest")
	if err := nt.Build(tstConfig(true)); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ly := nt.Layers[1]
	if err := ly.Conns.Connect(ly.SegIdx(0, 0, 0), []int32{0, 1, 2}); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	if err := nt.Forward(inPat(12, 0, 1)); err != nil {
		t.Fatalf("Forward error: %v", err)
	}
	ng, err := nt.NeuronGraph(1, 0, true)
	if err != nil {
		t.Fatalf("NeuronGraph error: %v", err)
	}
	// neuron + 2 branches + 4 segments + 3 distinct sources
	if len(ng.Nodes) != 10 {
		t.Errorf("NeuronGraph nodes: %d != 10", len(ng.Nodes))
	}
	segOn := false
	for _, nd := range ng.Nodes {
		if nd.Kind == SegmentNode && nd.ID == segID(1, 0, 0, 0) {
			segOn = nd.Act
		}
	}
	if !segOn {
		t.Errorf("trained segment with 2 active inputs should be active in graph export")
	}
	g := nt.NetGraph(NeuronLevel)
	if len(g.Nodes) != 14 { // 12 input + 2 column layer neurons
		t.Errorf("NetGraph(NeuronLevel) nodes: %d != 14", len(g.Nodes))
	}
	if len(g.Edges) != 3 {
		t.Errorf("NetGraph(NeuronLevel) edges: %d != 3", len(g.Edges))
	}
	gf := nt.NetGraph(SynLevel)
	if len(gf.Nodes) <= len(g.Nodes) {
		t.Errorf("NetGraph(SynLevel) must include dendritic nodes: %d <= %d", len(gf.Nodes), len(g.Nodes))
	}
}
