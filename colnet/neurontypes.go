// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import "github.com/goki/ki/kit"

// NeuronTypes enumerates the two neuron populations in every column.
// A neuron's type, together with its layer and column, is its fixed
// class-target association: it determines which previous-layer candidate
// pool the neuron may sample from during training (intra-class excitation,
// inter-class inhibition), and never changes after construction.
type NeuronTypes int32

// The neuron types
const (
	// Excitatory neurons wire to active previous-layer neurons within
	// their own class column (intra-class excitation).
	Excitatory NeuronTypes = iota

	// Inhibitory neurons wire to previous-layer neurons belonging to
	// other class columns (inter-class inhibition).
	Inhibitory

	NeuronTypesN
)

var KiT_NeuronTypes = kit.Enums.AddEnum(NeuronTypesN, kit.NotBitFlag, nil)

func (ev NeuronTypes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NeuronTypes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

func (ev NeuronTypes) String() string {
	switch ev {
	case Excitatory:
		return "Excitatory"
	case Inhibitory:
		return "Inhibitory"
	}
	return "NeuronTypesN"
}

// LayerTypes enumerates the structurally distinct layer kinds.
type LayerTypes int32

// The layer types
const (
	// Input is layer 0: raw binary feature activations, no columns,
	// branches or segments.
	Input LayerTypes = iota

	// ColumnLayer is any layer above the input: NClasses columns of paired
	// excitatory / inhibitory neuron groups with dendritic structure.
	ColumnLayer

	LayerTypesN
)

var KiT_LayerTypes = kit.Enums.AddEnum(LayerTypesN, kit.NotBitFlag, nil)

func (ev LayerTypes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *LayerTypes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

func (ev LayerTypes) String() string {
	switch ev {
	case Input:
		return "Input"
	case ColumnLayer:
		return "Column"
	}
	return "LayerTypesN"
}
