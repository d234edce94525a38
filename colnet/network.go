// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"github.com/emer/etable/etensor"
)

// InitActs resets all activation state in the network.
func (nt *Network) InitActs() {
	for _, ly := range nt.Layers {
		ly.InitActs()
	}
}

// cycleLayer computes the layer's activation from its predecessor's frozen
// snapshot, fanning the independent columns out across goroutines.  The
// layer's own snapshot buffer and stats are updated before returning, so
// propagation is strictly layer-synchronous.
func (nt *Network) cycleLayer(ly, prev *Layer) {
	prevAct := prev.Acts()
	for ci := range ly.Cols {
		nt.WaitGp.Add(1)
		go func(ci int) {
			ly.CycleColumn(ci, prevAct)
			nt.WaitGp.Done()
		}(ci)
	}
	nt.WaitGp.Wait()
	ly.CycleStats()
}

// Cycle propagates the current input-layer snapshot through all layers,
// bottom to top.  Layer L+1 is not computed until layer L's snapshot is
// fully materialized.
func (nt *Network) Cycle() {
	for li := 1; li < len(nt.Layers); li++ {
		ly := nt.Layers[li]
		if ly.IsOff() {
			continue
		}
		nt.cycleLayer(ly, nt.Layers[li-1])
	}
}

// Forward applies the given binary input pattern and propagates it through
// the network.  Pure inference: no connectivity changes.
func (nt *Network) Forward(ext etensor.Tensor) error {
	if err := nt.Layers[0].ApplyExt(ext); err != nil {
		return err
	}
	nt.Cycle()
	return nil
}

// DecideClass reduces the output layer's current snapshot to a predicted
// class: the column with the greatest count of fired excitatory neurons.
// Ties resolve deterministically to the lowest column index.
func (nt *Network) DecideClass() int {
	out := nt.OutputLayer()
	best := 0
	bestN := -1
	for ci := range out.Cols {
		n := out.ColFireCount(ci, Excitatory)
		if n > bestN {
			best = ci
			bestN = n
		}
	}
	return best
}

// Predict runs inference on the given input pattern and returns the
// predicted class.
func (nt *Network) Predict(ext etensor.Tensor) (int, error) {
	if err := nt.Forward(ext); err != nil {
		return -1, err
	}
	return nt.DecideClass(), nil
}
