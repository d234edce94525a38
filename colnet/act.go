// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"fmt"

	"github.com/emer/etable/etensor"
)

// Dendritic activation: a pure, deterministic function of the committed
// connectivity state and the previous layer's frozen activation snapshot.
// Bottom-up per neuron:
//  1. a segment is active iff the count of its connected, currently-active
//     sources meets the layer's threshold (the NMDA-spike condition);
//     unconnected slots never contribute.
//  2. a branch is active iff at least one of its segments is active -- the
//     segments independently detect alternative input patterns.
//  3. a neuron fires iff all of its branches are active -- each branch must
//     corroborate with its own learned sub-pattern.
// No learning happens here.

// ApplyExt applies an external binary input pattern to the input layer.
// Values must be exactly 0 or 1: anything else fails fast with
// ErrUnsupportedDataFormat, as the model has no semantics for graded
// activation.  Pattern length must match the layer size.
func (ly *Layer) ApplyExt(ext etensor.Tensor) error {
	if ly.Typ != Input {
		return fmt.Errorf("colnet.Layer %s: ApplyExt is only valid on the input layer", ly.Nm)
	}
	if ext.Len() != ly.NNeur() {
		return fmt.Errorf("colnet.Layer %s: input pattern length %d != layer size %d", ly.Nm, ext.Len(), ly.NNeur())
	}
	for ni := range ly.Neurons {
		v := ext.FloatVal1D(ni)
		switch v {
		case 0:
			ly.Neurons[ni].Act = false
		case 1:
			ly.Neurons[ni].Act = true
		default:
			return fmt.Errorf("%w: value %g at index %d", ErrUnsupportedDataFormat, v, ni)
		}
	}
	ly.CycleStats()
	return nil
}

// CycleNeuron computes the full dendritic activation cascade for one neuron
// from the previous layer's snapshot, updating the layer's segment, branch
// and neuron state.
func (ly *Layer) CycleNeuron(ni int, prevAct []bool) {
	cf := &ly.Net.Config
	nrn := &ly.Neurons[ni]
	fire := true
	for bi := 0; bi < cf.NBranches; bi++ {
		brOn := false
		for si := 0; si < cf.NSegs; si++ {
			sgi := ly.SegIdx(ni, bi, si)
			nin := ly.Conns.NumActIn(sgi, prevAct)
			ly.SegNIn[sgi] = int32(nin)
			on := nin >= ly.SegThr
			ly.SegAct[sgi] = on
			if on {
				brOn = true
			}
		}
		ly.BrAct[ly.BrIdx(ni, bi)] = brOn
		if !brOn {
			fire = false
		}
	}
	nrn.Act = fire
}

// CycleColumn computes activation for every neuron in column ci.  Columns
// are independent given the frozen previous-layer snapshot, so the network
// fans them out across goroutines.
func (ly *Layer) CycleColumn(ci int, prevAct []bool) {
	cl := &ly.Cols[ci]
	for ni := cl.Exc.St; ni < cl.Exc.Ed; ni++ {
		ly.CycleNeuron(ni, prevAct)
	}
	for ni := cl.Inh.St; ni < cl.Inh.Ed; ni++ {
		ly.CycleNeuron(ni, prevAct)
	}
}
