// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"fmt"

	"github.com/emer/emergent/params"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
)

// colnet.Layer implements one layer of the columnar E/I network.  The input
// layer (type Input) holds raw binary feature units with no dendritic
// structure; every layer above it (type Column) holds one column per class
// target, each with equal-sized excitatory and inhibitory neuron groups,
// where each neuron has NBranches branches of NSegs segments.  Branch and
// segment activation state is stored in flat slices indexed by BrIdx /
// SegIdx, and all synaptic connectivity from the previous layer lives in
// the Conns store.
type Layer struct {
	LayerBase

	// the neurons in this layer, ordered by column, then type (E block then I block), then neuron
	Neurons []Neuron `desc:"the neurons in this layer, ordered by column, then type (E block then I block), then neuron"`

	// the class columns indexing into Neurons -- nil for the input layer
	Cols []Column `desc:"the class columns indexing into Neurons -- nil for the input layer"`

	// segment activation threshold for this layer: a segment fires iff at least this many connected sources are active.  Initialized from NetConfig.SegThr at Build; can be overridden per layer via params.
	SegThr int `desc:"segment activation threshold for this layer"`

	// synaptic connectivity from the previous layer -- nil for the input layer
	Conns *ConnStore `desc:"synaptic connectivity from the previous layer -- nil for the input layer"`

	// per-branch activation: true iff at least one segment on the branch is active (OR across segments)
	BrAct []bool `view:"-" desc:"per-branch activation: true iff at least one segment on the branch is active"`

	// per-segment activation: true iff the count of active connected sources meets the threshold (NMDA-spike condition)
	SegAct []bool `view:"-" desc:"per-segment activation: NMDA-spike condition met"`

	// per-segment count of active connected sources on the current cycle, for display and analysis
	SegNIn []int32 `view:"-" desc:"per-segment count of active connected sources on the current cycle"`

	// current activation snapshot as a flat bool slice, updated at the end of every cycle -- the frozen input for the next layer
	acts []bool

	// average and max neuron activation on the current cycle (binary acts, so Avg = fraction active)
	ActAvg minmax.AvgMax32 `inactive:"+" view:"inline" desc:"average and max neuron activation on the current cycle"`
}

// NNeur returns the number of neurons in the layer.
func (ly *Layer) NNeur() int { return len(ly.Neurons) }

// BrIdx returns the flat branch index for neuron ni, branch bi.
func (ly *Layer) BrIdx(ni, bi int) int {
	return ni*ly.Net.Config.NBranches + bi
}

// SegIdx returns the flat segment index for neuron ni, branch bi, segment si.
// This is the segment's identity in the Conns store and availability matrix.
func (ly *Layer) SegIdx(ni, bi, si int) int {
	cf := &ly.Net.Config
	return (ni*cf.NBranches+bi)*cf.NSegs + si
}

// NeurIdx returns the flat neuron index for column ci, type typ, neuron k
// within the type group.
func (ly *Layer) NeurIdx(ci int, typ NeuronTypes, k int) int {
	cf := &ly.Net.Config
	return (ci*2+int(typ))*cf.NNeurPerCol + k
}

// Build constructs the layer state from the network configuration.
func (ly *Layer) Build() error {
	cf := &ly.Net.Config
	ly.SegThr = cf.SegThr
	if ly.Typ == Input {
		ly.Neurons = make([]Neuron, cf.InputN)
		for ni := range ly.Neurons {
			nrn := &ly.Neurons[ni]
			nrn.Idx = int32(ni)
			nrn.Col = -1
		}
		ly.acts = make([]bool, cf.InputN)
		return nil
	}
	nn := cf.ColN()
	ly.Neurons = make([]Neuron, nn)
	ly.Cols = make([]Column, cf.NClasses)
	for ci := range ly.Cols {
		cl := &ly.Cols[ci]
		cl.Class = int32(ci)
		cl.Exc = NeurRange{St: ly.NeurIdx(ci, Excitatory, 0), Ed: ly.NeurIdx(ci, Excitatory, 0) + cf.NNeurPerCol}
		cl.Inh = NeurRange{St: ly.NeurIdx(ci, Inhibitory, 0), Ed: ly.NeurIdx(ci, Inhibitory, 0) + cf.NNeurPerCol}
		for typ := Excitatory; typ <= Inhibitory; typ++ {
			rng := cl.TypeRange(typ)
			for ni := rng.St; ni < rng.Ed; ni++ {
				nrn := &ly.Neurons[ni]
				nrn.Idx = int32(ni)
				nrn.Col = int32(ci)
				nrn.Typ = typ
			}
		}
	}
	ly.BrAct = make([]bool, nn*cf.NBranches)
	ly.SegAct = make([]bool, nn*cf.NBranches*cf.NSegs)
	ly.SegNIn = make([]int32, nn*cf.NBranches*cf.NSegs)
	ly.acts = make([]bool, nn)
	ly.Conns = &ConnStore{}
	ly.Conns.Build(nn*cf.NBranches*cf.NSegs, cf.NSynsPerSeg, cf.LayerN(ly.Idx-1), cf.Sparse)
	return nil
}

// InitActs resets all activation state in the layer.
func (ly *Layer) InitActs() {
	for ni := range ly.Neurons {
		ly.Neurons[ni].Act = false
		ly.acts[ni] = false
	}
	for bi := range ly.BrAct {
		ly.BrAct[bi] = false
	}
	for si := range ly.SegAct {
		ly.SegAct[si] = false
		ly.SegNIn[si] = 0
	}
	ly.ActAvg.Init()
}

// Acts returns the layer's current activation snapshot as a flat bool
// slice, one entry per neuron.  The slice is owned by the layer and is
// overwritten on the next cycle; callers needing to retain it must copy.
func (ly *Layer) Acts() []bool { return ly.acts }

// CycleStats updates the per-cycle activation statistics and snapshot
// buffer from the neuron Act flags.
func (ly *Layer) CycleStats() {
	ly.ActAvg.Init()
	for ni := range ly.Neurons {
		act := ly.Neurons[ni].Act
		ly.acts[ni] = act
		v := float32(0)
		if act {
			v = 1
		}
		ly.ActAvg.UpdateVal(v, int32(ni))
	}
	ly.ActAvg.CalcAvg()
}

// NumActive returns the number of neurons that fired on the current cycle.
func (ly *Layer) NumActive() int {
	n := 0
	for ni := range ly.Neurons {
		if ly.Neurons[ni].Act {
			n++
		}
	}
	return n
}

// ColFireCount returns the number of fired neurons of the given type in
// column ci on the current cycle.
func (ly *Layer) ColFireCount(ci int, typ NeuronTypes) int {
	rng := ly.Cols[ci].TypeRange(typ)
	n := 0
	for ni := rng.St; ni < rng.Ed; ni++ {
		if ly.Neurons[ni].Act {
			n++
		}
	}
	return n
}

// UnitActs fills the given Bits tensor with the layer's current neuron
// activation snapshot, reshaping it to the layer's length.  This is the
// read-only state export consumed by visualization collaborators.
func (ly *Layer) UnitActs(tsr *etensor.Bits) {
	tsr.SetShape([]int{ly.NNeur()}, nil, []string{"Neur"})
	for ni := range ly.Neurons {
		tsr.Values.Set(ni, ly.Neurons[ni].Act)
	}
}

// ApplyParams applies given parameter style Sheet to this layer.
// If setMsg is true, then a message is printed to confirm each parameter
// that is set.  It always prints a message if a parameter fails to be set.
// Returns true if any params were set, and error if there were any errors.
func (ly *Layer) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	return pars.Apply(ly, setMsg)
}

// String satisfies fmt.Stringer.
func (ly *Layer) String() string {
	return fmt.Sprintf("%s (%s, %d neurons)", ly.Nm, ly.Typ, ly.NNeur())
}
