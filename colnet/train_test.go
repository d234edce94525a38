// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/emer/etable/etensor"
)

// trnConfig is the standard 3-layer, 3-class training test configuration.
func trnConfig(sparse bool) NetConfig {
	cf := NetConfig{}
	cf.Defaults()
	cf.NLayers = 3
	cf.NClasses = 3
	cf.NNeurPerCol = 4
	cf.NBranches = 2
	cf.NSegs = 4
	cf.NSynsPerSeg = 3
	cf.SegThr = 2
	cf.InputN = 16
	cf.TrainN = 2
	cf.Sparse = sparse
	return cf
}

// rndPat returns a random binary pattern with nOn bits on.
func rndPat(rnd *rand.Rand, n, nOn int) *etensor.Float32 {
	pat := etensor.NewFloat32([]int{n}, nil, []string{"Input"})
	for _, i := range rnd.Perm(n)[:nOn] {
		pat.Values[i] = 1
	}
	return pat
}

// segSnapshot records the committed sources of every trained segment,
// keyed by layer and segment index.
func segSnapshot(nt *Network) map[string][]int32 {
	snap := map[string][]int32{}
	for li := 1; li < len(nt.Layers); li++ {
		ly := nt.Layers[li]
		for sgi := 0; sgi < len(ly.SegAct); sgi++ {
			if ly.Conns.IsTrained(sgi) {
				snap[fmt.Sprintf("%d:%d", li, sgi)] = ly.Conns.SegSrcs(sgi)
			}
		}
	}
	return snap
}

// TestNoRetrain trains well past segment-pool capacity and verifies that a
// committed segment's sources are never modified afterwards, and that
// exhausted branch pools are skipped and counted rather than retrained.
func TestNoRetrain(t *testing.T) {
	nt := NewNetwork("NoRetrainTest")
	if err := nt.Build(trnConfig(true)); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	rnd := rand.New(rand.NewSource(42))
	var prior map[string][]int32
	// per branch pool is NSegs=4; 40 samples of one class oversubscribes it
	for smp := 0; smp < 40; smp++ {
		if err := nt.TrainSample(rndPat(rnd, 16, 6), 0); err != nil {
			t.Fatalf("TrainSample error: %v", err)
		}
		snap := segSnapshot(nt)
		for key, srcs := range prior {
			cur, ok := snap[key]
			if !ok {
				t.Fatalf("sample %d: trained segment %s lost its trained status", smp, key)
			}
			if len(cur) != len(srcs) {
				t.Fatalf("sample %d: segment %s source count changed: %d -> %d", smp, key, len(srcs), len(cur))
			}
			for i := range srcs {
				if cur[i] != srcs[i] {
					t.Fatalf("sample %d: segment %s source %d changed: %d -> %d", smp, key, i, srcs[i], cur[i])
				}
			}
		}
		prior = snap
	}
	if nt.Stats.SegExhausted == 0 {
		t.Errorf("oversubscribed training should have exhausted some branch pools: %v", nt.Stats.String())
	}
	if nt.Stats.NSamples != 40 {
		t.Errorf("NSamples: %d != 40", nt.Stats.NSamples)
	}
	// capacity bound: trained segments never exceed the label column's pool
	cf := &nt.Config
	colSegs := 2 * cf.NNeurPerCol * cf.NBranches * cf.NSegs
	for li := 1; li < len(nt.Layers); li++ {
		if n := nt.Layers[li].Conns.NumTrained(); n > colSegs {
			t.Errorf("layer %d: %d trained segments exceeds single-column capacity %d", li, n, colSegs)
		}
	}
}

// TestClassWiring verifies the class-conditioned candidate pools on a
// column-to-column projection: excitatory segments in column c draw only
// from column c of the previous layer, and inhibitory segments never do.
func TestClassWiring(t *testing.T) {
	nt := NewNetwork("ClassWiringTest")
	if err := nt.Build(trnConfig(false)); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	rnd := rand.New(rand.NewSource(7))
	for smp := 0; smp < 12; smp++ {
		if err := nt.TrainSample(rndPat(rnd, 16, 6), smp%3); err != nil {
			t.Fatalf("TrainSample error: %v", err)
		}
	}
	cf := &nt.Config
	out := nt.OutputLayer()
	hid := nt.Layers[1]
	perNeur := cf.NBranches * cf.NSegs
	checked := 0
	for sgi := 0; sgi < len(out.SegAct); sgi++ {
		if !out.Conns.IsTrained(sgi) {
			continue
		}
		nrn := &out.Neurons[sgi/perNeur]
		for _, src := range out.Conns.SegSrcs(sgi) {
			srcCol := hid.Neurons[src].Col
			if nrn.Typ == Excitatory && srcCol != nrn.Col {
				t.Errorf("excitatory segment %d in column %d wired to column %d", sgi, nrn.Col, srcCol)
			}
			if nrn.Typ == Inhibitory && srcCol == nrn.Col {
				t.Errorf("inhibitory segment %d in column %d wired to its own column", sgi, nrn.Col)
			}
		}
		checked++
	}
	if checked == 0 {
		t.Fatalf("no trained segments in the output layer to check: %v", nt.Stats.String())
	}
}

// TestDenseSparseEquiv trains a dense and a sparse network with the same
// config and seed on the same sample stream and requires identical wiring
// counts, activations and decisions on a held-out set.
func TestDenseSparseEquiv(t *testing.T) {
	dnt := NewNetwork("DenseNet")
	if err := dnt.Build(trnConfig(false)); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	snt := NewNetwork("SparseNet")
	if err := snt.Build(trnConfig(true)); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	prnd := rand.New(rand.NewSource(99))
	train := make([]*etensor.Float32, 15)
	for i := range train {
		train[i] = rndPat(prnd, 16, 5)
	}
	for i, pat := range train {
		if err := dnt.TrainSample(pat, i%3); err != nil {
			t.Fatalf("dense TrainSample error: %v", err)
		}
		if err := snt.TrainSample(pat, i%3); err != nil {
			t.Fatalf("sparse TrainSample error: %v", err)
		}
	}
	for li := 1; li < len(dnt.Layers); li++ {
		dn := dnt.Layers[li].Conns.NumTrained()
		sn := snt.Layers[li].Conns.NumTrained()
		if dn != sn {
			t.Errorf("layer %d: trained segment count diverges: dense %d, sparse %d", li, dn, sn)
		}
	}
	for ti := 0; ti < 10; ti++ {
		pat := rndPat(prnd, 16, 5)
		dcls, err := dnt.Predict(pat)
		if err != nil {
			t.Fatalf("dense Predict error: %v", err)
		}
		scls, err := snt.Predict(pat)
		if err != nil {
			t.Fatalf("sparse Predict error: %v", err)
		}
		for li, dly := range dnt.Layers {
			sly := snt.Layers[li]
			for ni := range dly.Neurons {
				if dly.Neurons[ni].Act != sly.Neurons[ni].Act {
					t.Errorf("test pat %d: layer %d neuron %d: dense act %v != sparse act %v -- representations have diverged",
						ti, li, ni, dly.Neurons[ni].Act, sly.Neurons[ni].Act)
				}
			}
		}
		if dcls != scls {
			t.Errorf("test pat %d: decision diverges: dense %d, sparse %d", ti, dcls, scls)
		}
	}
}

// TestEmptyPool trains on an all-zero input: the excitatory candidate pool
// is empty, which is counted and skipped, not an error, while the
// inhibitory pool falls back to all input units and still wires.
func TestEmptyPool(t *testing.T) {
	nt := NewNetwork("EmptyPoolTest")
	if err := nt.Build(trnConfig(true)); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	zero := etensor.NewFloat32([]int{16}, nil, []string{"Input"})
	if err := nt.TrainSample(zero, 1); err != nil {
		t.Fatalf("TrainSample error: %v", err)
	}
	if nt.Stats.EmptyPool == 0 {
		t.Errorf("all-zero input should yield empty excitatory pools: %v", nt.Stats.String())
	}
	if nt.Stats.SegsTrained == 0 {
		t.Errorf("inhibitory fallback pool should still wire segments: %v", nt.Stats.String())
	}
}

// TestTrainEndToEnd runs the minimal hand-checkable scenario: 2 classes,
// input + hidden + output, 1 branch with 1 segment of 2 slots, threshold 2.
// One class-0 sample with all 4 inputs active wires the class-0 hidden
// neurons to active inputs, so the trained hidden segment fires on the same
// pattern, the snapshot feeds forward, and the decision is class 0.
func TestTrainEndToEnd(t *testing.T) {
	cf := NetConfig{}
	cf.Defaults()
	cf.NClasses = 2
	cf.NBranches = 1
	cf.NSegs = 1
	cf.NSynsPerSeg = 2
	cf.SegThr = 2
	cf.InputN = 4
	nt := NewNetwork("EndToEndTest")
	if err := nt.Build(cf); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	pat := inPat(4, 0, 1, 2, 3)
	if err := nt.TrainSample(pat, 0); err != nil {
		t.Fatalf("TrainSample error: %v", err)
	}
	hid := nt.Layers[1]
	eni := hid.NeurIdx(0, Excitatory, 0)
	sgi := hid.SegIdx(eni, 0, 0)
	if !hid.Conns.IsTrained(sgi) {
		t.Fatalf("class-0 excitatory hidden segment was not trained: %v", nt.Stats.String())
	}
	if srcs := hid.Conns.SegSrcs(sgi); len(srcs) != 2 {
		t.Fatalf("trained segment source count: %d != 2", len(srcs))
	}
	if !hid.SegAct[sgi] {
		t.Errorf("trained segment wired to 2 of 4 active inputs must fire at threshold 2")
	}
	if !hid.Neurons[eni].Act {
		t.Errorf("class-0 excitatory hidden neuron must fire: its only branch has an active segment")
	}
	for typ := Excitatory; typ <= Inhibitory; typ++ {
		if hid.Neurons[hid.NeurIdx(1, typ, 0)].Act {
			t.Errorf("untrained class-1 hidden %v neuron must stay silent", typ)
		}
	}
	if cls := nt.DecideClass(); cls != 0 {
		t.Errorf("decision after training: %d != 0", cls)
	}
	cls, err := nt.Predict(pat)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if cls != 0 {
		t.Errorf("Predict on the trained pattern: %d != 0", cls)
	}
}
