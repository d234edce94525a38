// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import "fmt"

// colnet.Neuron holds the per-neuron state.  Topology (which column and type
// a neuron belongs to, how many branches and segments it has) is fixed at
// Build time; only the activation state changes at runtime, recomputed from
// scratch on every cycle.  Dendritic state (branch and segment activations)
// lives in flat per-layer slices indexed through BrIdx / SegIdx, following
// the flat-storage layout used throughout this codebase.
type Neuron struct {

	// index of this neuron within its layer's flat Neurons list
	Idx int32 `desc:"index of this neuron within its layer's flat Neurons list"`

	// column (class target) this neuron belongs to -- -1 for input layer neurons, which carry no class structure
	Col int32 `desc:"column (class target) this neuron belongs to -- -1 for input layer neurons"`

	// neuron type: Excitatory or Inhibitory -- fixed class-capability tag
	Typ NeuronTypes `desc:"neuron type: Excitatory or Inhibitory -- fixed class-capability tag"`

	// whether the neuron fired on the current cycle: all branches active (AND across branches)
	Act bool `desc:"whether the neuron fired on the current cycle: all branches active (AND across branches)"`
}

// NeuronVars are the variable names accessible on a neuron for display
// and logging: neuron-level activation only -- branch and segment state
// is accessed through the layer.
var NeuronVars = []string{"Act"}

// VarByName returns the named variable as a float (1 = active) or an error.
func (nrn *Neuron) VarByName(varNm string) (float32, error) {
	if varNm != "Act" {
		return 0, fmt.Errorf("colnet.Neuron VarByName: variable name: %v not valid", varNm)
	}
	if nrn.Act {
		return 1, nil
	}
	return 0, nil
}

// NeurRange is a contiguous [St, Ed) range of neuron indexes within a
// layer's flat Neurons slice.
type NeurRange struct {

	// starting index, inclusive
	St int `desc:"starting index, inclusive"`

	// ending index, exclusive
	Ed int `desc:"ending index, exclusive"`
}

// N returns the number of neurons in the range.
func (nr *NeurRange) N() int { return nr.Ed - nr.St }

// Contains returns true if neuron index ni falls within the range.
func (nr *NeurRange) Contains(ni int) bool { return ni >= nr.St && ni < nr.Ed }

// colnet.Column is one class column within a layer: the pair of equal-sized
// excitatory and inhibitory neuron groups dedicated to one class target.
// Like the unit pools in other emergent models it just indexes ranges of the
// layer's flat neuron list.
type Column struct {

	// class target this column is dedicated to (= column index within layer)
	Class int32 `desc:"class target this column is dedicated to (= column index within layer)"`

	// range of excitatory neurons in the layer's Neurons slice
	Exc NeurRange `desc:"range of excitatory neurons in the layer's Neurons slice"`

	// range of inhibitory neurons in the layer's Neurons slice
	Inh NeurRange `desc:"range of inhibitory neurons in the layer's Neurons slice"`
}

// TypeRange returns the neuron range for the given type.
func (cl *Column) TypeRange(typ NeuronTypes) *NeurRange {
	if typ == Excitatory {
		return &cl.Exc
	}
	return &cl.Inh
}
