// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import "fmt"

// NetConfig has all of the structural and training parameters for a columnar
// E/I network.  Everything the model depends on is here -- there are no
// hardcoded constants anywhere in the algorithm code.  Defaults provides
// reasonable starting values but every field is expected to be set
// deliberately for a given model.
type NetConfig struct {

	// total number of layers, including the input layer (layer 0)
	NLayers int `def:"3" desc:"total number of layers, including the input layer (layer 0)"`

	// number of class targets = number of columns in every layer above the input
	NClasses int `desc:"number of class targets = number of columns in every layer above the input"`

	// number of neurons per type (excitatory, inhibitory) in each column -- populations are always equal per the equal-population assumption
	NNeurPerCol int `def:"1" desc:"number of neurons per type (excitatory, inhibitory) in each column -- populations are always equal"`

	// number of dendritic branches per neuron, ordered proximal to distal
	NBranches int `desc:"number of dendritic branches per neuron, ordered proximal to distal"`

	// number of segments per branch -- the finite pre-allocated pool available to training
	NSegs int `desc:"number of segments per branch -- the finite pre-allocated pool available to training"`

	// number of synaptic input slots per segment
	NSynsPerSeg int `desc:"number of synaptic input slots per segment"`

	// segment activation threshold: a segment fires iff at least this many of its connected sources are active (the NMDA-spike condition).  Must be >= 1 so that unwired segments can never fire.
	SegThr int `desc:"segment activation threshold: a segment fires iff at least this many of its connected sources are active (the NMDA-spike condition) -- must be >= 1 so unwired segments never fire"`

	// number of units in the input layer (layer 0)
	InputN int `desc:"number of units in the input layer (layer 0)"`

	// number of neurons per type selected for wiring in the label column, per sample, per layer
	TrainN int `def:"1" desc:"number of neurons per type selected for wiring in the label column, per sample, per layer"`

	// number of branches selected per selected neuron
	TrainB int `def:"1" desc:"number of branches selected per selected neuron"`

	// number of segments wired per selected branch
	TrainS int `def:"1" desc:"number of segments wired per selected branch"`

	// number of input slots populated per wired segment -- 0 means all NSynsPerSeg slots
	TrainI int `def:"0" desc:"number of input slots populated per wired segment -- 0 means all NSynsPerSeg slots"`

	// use the sparse (per-segment source index list) connectivity representation instead of the dense boolean adjacency
	Sparse bool `desc:"use the sparse (per-segment source index list) connectivity representation instead of the dense boolean adjacency"`

	// maximum random draws when looking for an untrained segment on a branch before falling back to a linear scan
	MaxClaimTries int `def:"20" desc:"maximum random draws when looking for an untrained segment on a branch before falling back to a linear scan"`

	// random seed for all selection during training -- two networks built with the same config and seed make identical allocation decisions
	RndSeed int64 `def:"1" desc:"random seed for all selection during training"`
}

// Defaults sets default values -- structural sizes (NClasses, NBranches, NSegs,
// NSynsPerSeg, SegThr, InputN) have no meaningful defaults and must be set.
func (cf *NetConfig) Defaults() {
	cf.NLayers = 3
	cf.NNeurPerCol = 1
	cf.TrainN = 1
	cf.TrainB = 1
	cf.TrainS = 1
	cf.TrainI = 0
	cf.MaxClaimTries = 20
	cf.RndSeed = 1
}

// Update resolves derived values: a zero TrainI means all slots.
func (cf *NetConfig) Update() {
	if cf.TrainI == 0 {
		cf.TrainI = cf.NSynsPerSeg
	}
}

// Validate checks the configuration for inconsistent or missing values,
// returning a descriptive error for the first problem found.
func (cf *NetConfig) Validate() error {
	switch {
	case cf.NLayers < 2:
		return fmt.Errorf("colnet.NetConfig: NLayers must be >= 2 (input + at least one column layer), got %d", cf.NLayers)
	case cf.NClasses < 1:
		return fmt.Errorf("colnet.NetConfig: NClasses must be >= 1, got %d", cf.NClasses)
	case cf.NNeurPerCol < 1:
		return fmt.Errorf("colnet.NetConfig: NNeurPerCol must be >= 1, got %d", cf.NNeurPerCol)
	case cf.NBranches < 1:
		return fmt.Errorf("colnet.NetConfig: NBranches must be >= 1, got %d", cf.NBranches)
	case cf.NSegs < 1:
		return fmt.Errorf("colnet.NetConfig: NSegs must be >= 1, got %d", cf.NSegs)
	case cf.NSynsPerSeg < 1:
		return fmt.Errorf("colnet.NetConfig: NSynsPerSeg must be >= 1, got %d", cf.NSynsPerSeg)
	case cf.SegThr < 1:
		return fmt.Errorf("colnet.NetConfig: SegThr must be >= 1 so that unwired segments never fire, got %d", cf.SegThr)
	case cf.InputN < 1:
		return fmt.Errorf("colnet.NetConfig: InputN must be >= 1, got %d", cf.InputN)
	case cf.TrainN < 1 || cf.TrainN > cf.NNeurPerCol:
		return fmt.Errorf("colnet.NetConfig: TrainN must be in 1..NNeurPerCol (%d), got %d", cf.NNeurPerCol, cf.TrainN)
	case cf.TrainB < 1 || cf.TrainB > cf.NBranches:
		return fmt.Errorf("colnet.NetConfig: TrainB must be in 1..NBranches (%d), got %d", cf.NBranches, cf.TrainB)
	case cf.TrainS < 1 || cf.TrainS > cf.NSegs:
		return fmt.Errorf("colnet.NetConfig: TrainS must be in 1..NSegs (%d), got %d", cf.NSegs, cf.TrainS)
	case cf.TrainI < 0 || cf.TrainI > cf.NSynsPerSeg:
		return fmt.Errorf("colnet.NetConfig: TrainI must be in 0..NSynsPerSeg (%d), got %d", cf.NSynsPerSeg, cf.TrainI)
	case cf.MaxClaimTries < 1:
		return fmt.Errorf("colnet.NetConfig: MaxClaimTries must be >= 1, got %d", cf.MaxClaimTries)
	}
	return nil
}

// ColN returns the total number of neurons in a column layer:
// NClasses columns x 2 types x NNeurPerCol.
func (cf *NetConfig) ColN() int {
	return cf.NClasses * 2 * cf.NNeurPerCol
}

// LayerN returns the number of neurons in layer li (0 = input).
func (cf *NetConfig) LayerN(li int) int {
	if li == 0 {
		return cf.InputN
	}
	return cf.ColN()
}
