// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"fmt"
	"log"

	"github.com/emer/etable/etensor"
)

// Segment allocation: the training algorithm.  Training is structural, not
// weight-based: for each sample, a few untrained segments in the column
// matching the sample's label are wired to a class-conditioned candidate
// pool drawn from the previous layer's activation snapshot, and frozen.
// Layers train greedily bottom-up: each layer's snapshot is recomputed
// after its allocation, so the next layer up allocates against connectivity
// that already includes this sample's wiring, and committed lower-layer
// segments are never revisited.

// TrainStats accumulates allocation counters across training samples.
type TrainStats struct {

	// number of samples trained
	NSamples int `desc:"number of samples trained"`

	// number of segments wired and committed
	SegsTrained int `desc:"number of segments wired and committed"`

	// number of allocation slots skipped because the branch's segment pool was exhausted (all trained)
	SegExhausted int `desc:"number of allocation slots skipped because the branch's segment pool was exhausted"`

	// number of allocation slots skipped because the candidate pool was empty
	EmptyPool int `desc:"number of allocation slots skipped because the candidate pool was empty"`
}

// Init resets the counters.
func (ts *TrainStats) Init() { *ts = TrainStats{} }

func (ts *TrainStats) String() string {
	return fmt.Sprintf("samples: %d  segs trained: %d  exhausted: %d  empty pool: %d",
		ts.NSamples, ts.SegsTrained, ts.SegExhausted, ts.EmptyPool)
}

// TrainSample runs one online training step on the given binary input
// pattern and class label.  The input layer snapshot is applied first, then
// each layer above it, bottom to top, allocates segments from its
// predecessor's snapshot and recomputes its own snapshot for the layer
// above.  Returns an error for non-binary input or an out of range label;
// exhausted segment pools and empty candidate pools are not errors -- they
// are counted in Stats and logged.
func (nt *Network) TrainSample(ext etensor.Tensor, label int) error {
	cf := &nt.Config
	if label < 0 || label >= cf.NClasses {
		return fmt.Errorf("colnet.Network %s: label %d out of range [0, %d)", nt.Nm, label, cf.NClasses)
	}
	if err := nt.Layers[0].ApplyExt(ext); err != nil {
		return err
	}
	for li := 1; li < len(nt.Layers); li++ {
		ly := nt.Layers[li]
		if ly.IsOff() {
			continue
		}
		prev := nt.Layers[li-1]
		nt.allocLayer(ly, prev, label)
		nt.cycleLayer(ly, prev)
	}
	nt.Stats.NSamples++
	return nil
}

// allocLayer performs the per-layer allocation for one sample: TrainN
// neurons of each type in the label's column, TrainB branches each, TrainS
// segments per branch, each wired to TrainI sources from the type's
// candidate pool.
func (nt *Network) allocLayer(ly, prev *Layer, label int) {
	cf := &nt.Config
	excPool, inhPool := nt.CandidatePools(prev, label)
	cl := &ly.Cols[label]
	for typ := Excitatory; typ <= Inhibitory; typ++ {
		pool := excPool
		if typ == Inhibitory {
			pool = inhPool
		}
		if len(pool) == 0 {
			nt.Stats.EmptyPool += cf.TrainN * cf.TrainB * cf.TrainS
			log.Printf("colnet.Network %s: layer %s: empty %v candidate pool for label %d -- nothing to wire\n", nt.Nm, ly.Nm, typ, label)
			continue
		}
		rng := cl.TypeRange(typ)
		nperm := nt.Rnd.Perm(rng.N())
		for i := 0; i < cf.TrainN; i++ {
			ni := rng.St + nperm[i]
			bperm := nt.Rnd.Perm(cf.NBranches)
			for j := 0; j < cf.TrainB; j++ {
				bi := bperm[j]
				for k := 0; k < cf.TrainS; k++ {
					nt.wireSegment(ly, ni, bi, pool)
				}
			}
		}
	}
}

// wireSegment claims one untrained segment on the given branch and commits
// it with TrainI sources sampled from the pool.  Untrained segments are
// found by bounded random draws followed by a linear scan; if every segment
// on the branch is already trained, the slot is skipped and counted (no
// retraining, no pool extension -- the segment pool is fixed at Build).
func (nt *Network) wireSegment(ly *Layer, ni, bi int, pool []int32) {
	cf := &nt.Config
	srcs := nt.sampleSrcs(pool, cf.TrainI)
	for t := 0; t < cf.MaxClaimTries; t++ {
		si := nt.Rnd.Intn(cf.NSegs)
		if ly.Conns.Connect(ly.SegIdx(ni, bi, si), srcs) == nil {
			nt.Stats.SegsTrained++
			return
		}
	}
	for si := 0; si < cf.NSegs; si++ {
		if ly.Conns.Connect(ly.SegIdx(ni, bi, si), srcs) == nil {
			nt.Stats.SegsTrained++
			return
		}
	}
	nt.Stats.SegExhausted++
	log.Printf("colnet.Network %s: layer %s: %v -- neuron %d branch %d\n", nt.Nm, ly.Nm, ErrNoUntrainedSegment, ni, bi)
}

// CandidatePools returns the class-conditioned source candidate pools in
// the prev layer for training segments of the label's column:
//   - excitatory: previous-layer neurons that are active and belong to the
//     same class column (intra-class excitation).  When prev is the input
//     layer, which carries no class structure, all active input units are
//     candidates.
//   - inhibitory: previous-layer neurons in other class columns that are
//     inactive (inter-class inhibition; for the input layer, all inactive
//     units).  If every out-of-class neuron is active, the pool falls back
//     to all out-of-class neurons so inhibition can still be wired.
func (nt *Network) CandidatePools(prev *Layer, label int) (exc, inh []int32) {
	acts := prev.Acts()
	if prev.Typ == Input {
		for ni, act := range acts {
			if act {
				exc = append(exc, int32(ni))
			} else {
				inh = append(inh, int32(ni))
			}
		}
		if inh == nil {
			for ni := range acts {
				inh = append(inh, int32(ni))
			}
		}
		return
	}
	var inhAll []int32
	for ni, act := range acts {
		col := int(prev.Neurons[ni].Col)
		if col == label {
			if act {
				exc = append(exc, int32(ni))
			}
		} else {
			inhAll = append(inhAll, int32(ni))
			if !act {
				inh = append(inh, int32(ni))
			}
		}
	}
	if inh == nil {
		inh = inhAll
	}
	return
}

// sampleSrcs draws n sources from the pool: a random subset without
// replacement when the pool is large enough, otherwise uniform draws with
// replacement (duplicates collapse when wired, so a small pool simply
// yields a segment with fewer connections).
func (nt *Network) sampleSrcs(pool []int32, n int) []int32 {
	srcs := make([]int32, n)
	if len(pool) >= n {
		perm := nt.Rnd.Perm(len(pool))
		for i := 0; i < n; i++ {
			srcs[i] = pool[perm[i]]
		}
		return srcs
	}
	for i := 0; i < n; i++ {
		srcs[i] = pool[nt.Rnd.Intn(len(pool))]
	}
	return srcs
}
