// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"github.com/emer/emergent/relpos"
	"github.com/goki/mat32"
)

// colnet.LayerBase manages the structural elements of the layer, which are
// common to the input and column layer kinds: naming, indexing, and spatial
// position for display.
type LayerBase struct {

	// our parent network, in case we need to use it to find other layers etc -- set when added by network
	Net *Network `copy:"-" json:"-" xml:"-" view:"-" desc:"our parent network -- set when added by network"`

	// Name of the layer -- this must be unique within the network, which has a map for quick lookup; layers are typically accessed directly by name
	Nm string `desc:"Name of the layer -- this must be unique within the network"`

	// Class is for applying parameter styles, can be space separated multiple tags
	Cls string `desc:"Class is for applying parameter styles, can be space separated multiple tags"`

	// inactivate this layer -- allows for easy experimentation
	Off bool `desc:"inactivate this layer -- allows for easy experimentation"`

	// type of layer -- Input or Column -- matches against .Class parameter styles (e.g., .Column)
	Typ LayerTypes `desc:"type of layer -- Input or Column"`

	// a 0..n-1 index of the position of the layer within the list of layers in the network -- layer 0 is always the input layer
	Idx int `desc:"a 0..n-1 index of the position of the layer within the list of layers in the network"`

	// Spatial relationship to other layer, determines positioning
	Rel relpos.Rel `view:"inline" desc:"Spatial relationship to other layer, determines positioning"`

	// position of lower-left-hand corner of layer in 3D space, computed from Rel.  Layers are in X-Y width - height planes, stacked vertically in Z axis.
	Ps mat32.Vec3 `desc:"position of lower-left-hand corner of layer in 3D space, computed from Rel"`
}

// InitName initializes the layer's name and parent network.
func (ls *LayerBase) InitName(name string, net *Network) {
	ls.Nm = name
	ls.Net = net
}

func (ls *LayerBase) Name() string             { return ls.Nm }
func (ls *LayerBase) SetName(nm string)        { ls.Nm = nm }
func (ls *LayerBase) Label() string            { return ls.Nm }
func (ls *LayerBase) Class() string            { return ls.Typ.String() + " " + ls.Cls }
func (ls *LayerBase) SetClass(cls string)      { ls.Cls = cls }
func (ls *LayerBase) TypeName() string         { return "Layer" } // type category, for params..
func (ls *LayerBase) Type() LayerTypes         { return ls.Typ }
func (ls *LayerBase) IsOff() bool              { return ls.Off }
func (ls *LayerBase) SetOff(off bool)          { ls.Off = off }
func (ls *LayerBase) Index() int               { return ls.Idx }
func (ls *LayerBase) SetIndex(idx int)         { ls.Idx = idx }
func (ls *LayerBase) Pos() mat32.Vec3          { return ls.Ps }
func (ls *LayerBase) SetPos(pos mat32.Vec3)    { ls.Ps = pos }
func (ls *LayerBase) RelPos() relpos.Rel       { return ls.Rel }
func (ls *LayerBase) IsInput() bool            { return ls.Typ == Input }

func (ls *LayerBase) SetRelPos(rel relpos.Rel) {
	ls.Rel = rel
	if ls.Rel.Scale == 0 {
		ls.Rel.Defaults()
	}
}

// Size returns the display size of this layer for the 3D view: columns are
// arranged along X (each column showing its E and I groups side by side)
// and neurons-per-group along Y; the input layer is a flat 1D row.
func (ls *LayerBase) Size() mat32.Vec2 {
	if ls.Rel.Scale == 0 {
		ls.Rel.Defaults()
	}
	var sz mat32.Vec2
	cf := &ls.Net.Config
	if ls.Typ == Input {
		sz = mat32.Vec2{float32(cf.InputN), 1}
	} else {
		sz = mat32.Vec2{float32(cf.NClasses * 2), float32(cf.NNeurPerCol)}
	}
	return sz.MulScalar(ls.Rel.Scale)
}

