// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/emer/emergent/params"
	"github.com/emer/emergent/relpos"
	"github.com/goki/mat32"
)

// colnet.Network holds the layers of a columnar E/I network along with the
// configuration they were built from, the random source used by training
// allocation, and accumulated training statistics.  Topology is fixed at
// Build; connectivity is allocated incrementally by TrainSample and never
// revised once committed.
type Network struct {

	// overall name of network -- helps discriminate if there are multiple
	Nm string `desc:"overall name of network -- helps discriminate if there are multiple"`

	// the configuration the network was built from -- read-only after Build
	Config NetConfig `desc:"the configuration the network was built from -- read-only after Build"`

	// list of layers -- layer 0 is the input layer
	Layers []*Layer `desc:"list of layers -- layer 0 is the input layer"`

	// map of name to layers -- layer names must be unique
	LayMap map[string]*Layer `view:"-" desc:"map of name to layers -- layer names must be unique"`

	// random source for all training-time selection -- seeded from Config.RndSeed at Build
	Rnd *rand.Rand `view:"-" desc:"random source for all training-time selection"`

	// training allocation statistics
	Stats TrainStats `inactive:"+" desc:"training allocation statistics"`

	// minimum display position in network
	MinPos mat32.Vec3 `view:"-" desc:"minimum display position in network"`

	// maximum display position in network
	MaxPos mat32.Vec3 `view:"-" desc:"maximum display position in network"`

	// optional metadata saved in connectivity files -- e.g., number of samples trained
	MetaData map[string]string `desc:"optional metadata saved in connectivity files"`

	// network-level wait group for synchronizing the per-column goroutines within a layer cycle
	WaitGp sync.WaitGroup `view:"-" desc:"network-level wait group for synchronizing per-column goroutines"`
}

// NewNetwork returns a new network with the given name.
func NewNetwork(name string) *Network {
	nt := &Network{Nm: name}
	nt.Config.Defaults()
	return nt
}

// params.Styler interface, for network-level parameter styles
func (nt *Network) Name() string     { return nt.Nm }
func (nt *Network) Label() string    { return nt.Nm }
func (nt *Network) Class() string    { return "Network" }
func (nt *Network) TypeName() string { return "Network" }

// NLayers returns the number of layers, including the input layer.
func (nt *Network) NLayers() int { return len(nt.Layers) }

// Layer returns the layer at the given index.
func (nt *Network) Layer(idx int) *Layer { return nt.Layers[idx] }

// InputLayer returns layer 0.
func (nt *Network) InputLayer() *Layer { return nt.Layers[0] }

// OutputLayer returns the last (decision) layer.
func (nt *Network) OutputLayer() *Layer { return nt.Layers[len(nt.Layers)-1] }

// Bounds returns the min / max display bounds of the network.
func (nt *Network) Bounds() (min, max mat32.Vec3) { return nt.MinPos, nt.MaxPos }

// LayerByName returns a layer by looking it up by name in the layer map
// (nil if not found).
func (nt *Network) LayerByName(name string) *Layer {
	if nt.LayMap == nil || len(nt.LayMap) != len(nt.Layers) {
		nt.MakeLayMap()
	}
	return nt.LayMap[name]
}

// LayerByNameTry returns a layer by looking it up by name -- emits a log
// error message if layer is not found.
func (nt *Network) LayerByNameTry(name string) (*Layer, error) {
	ly := nt.LayerByName(name)
	if ly == nil {
		err := fmt.Errorf("layer named: %v not found in Network: %v", name, nt.Nm)
		log.Println(err)
		return nil, err
	}
	return ly, nil
}

// MakeLayMap updates the layer map based on current layers.
func (nt *Network) MakeLayMap() {
	nt.LayMap = make(map[string]*Layer, len(nt.Layers))
	for _, ly := range nt.Layers {
		nt.LayMap[ly.Name()] = ly
	}
}

// AddLayer adds a new layer with the given name and type to the network.
func (nt *Network) AddLayer(name string, typ LayerTypes) *Layer {
	ly := &Layer{}
	ly.InitName(name, nt)
	ly.Typ = typ
	nt.Layers = append(nt.Layers, ly)
	nt.MakeLayMap()
	return ly
}

// Build constructs the network from the given configuration: an input
// layer plus NLayers-1 column layers, each fully pre-allocated with
// untrained segments.  Layer names are Input, Hidden1..HiddenN, Output.
func (nt *Network) Build(cfg NetConfig) error {
	cfg.Update()
	if err := cfg.Validate(); err != nil {
		log.Println(err)
		return err
	}
	nt.Config = cfg
	nt.Rnd = rand.New(rand.NewSource(cfg.RndSeed))
	nt.Stats.Init()
	nt.Layers = nil
	nt.AddLayer("Input", Input)
	for li := 1; li < cfg.NLayers; li++ {
		nm := fmt.Sprintf("Hidden%d", li)
		if li == cfg.NLayers-1 {
			nm = "Output"
		}
		nt.AddLayer(nm, Column)
	}
	emsg := ""
	for li, ly := range nt.Layers {
		ly.SetIndex(li)
		if err := ly.Build(); err != nil {
			emsg += err.Error() + "\n"
		}
	}
	nt.StdVertLayout()
	nt.Layout()
	if emsg != "" {
		return errors.New(emsg)
	}
	return nil
}

// SetRndSeed reseeds the training random source -- useful for exact
// reproduction of an allocation sequence.
func (nt *Network) SetRndSeed(seed int64) {
	nt.Rnd = rand.New(rand.NewSource(seed))
}

// StdVertLayout arranges layers in a standard vertical (z axis stack)
// layout, by setting the Rel settings.
func (nt *Network) StdVertLayout() {
	lstnm := ""
	for li, ly := range nt.Layers {
		if li == 0 {
			ly.SetRelPos(relpos.Rel{Rel: relpos.NoRel})
			lstnm = ly.Name()
		} else {
			ly.SetRelPos(relpos.Rel{Rel: relpos.Above, Other: lstnm, XAlign: relpos.Middle, YAlign: relpos.Front})
			lstnm = ly.Name()
		}
	}
}

// Layout computes the 3D layout of layers based on their relative
// position settings.
func (nt *Network) Layout() {
	for itr := 0; itr < 5; itr++ {
		var lstly *Layer
		for _, ly := range nt.Layers {
			rp := ly.RelPos()
			var oly *Layer
			if lstly != nil && rp.Rel == relpos.NoRel {
				oly = lstly
				ly.SetRelPos(relpos.Rel{Rel: relpos.Above, Other: lstly.Name(), XAlign: relpos.Middle, YAlign: relpos.Front})
			} else if rp.Other != "" {
				var err error
				oly, err = nt.LayerByNameTry(rp.Other)
				if err != nil {
					continue
				}
			} else if lstly != nil {
				oly = lstly
				ly.SetRelPos(relpos.Rel{Rel: relpos.Above, Other: lstly.Name(), XAlign: relpos.Middle, YAlign: relpos.Front})
			}
			if oly != nil {
				ly.SetPos(ly.RelPos().Pos(oly.Pos(), oly.Size(), ly.Size()))
			}
			lstly = ly
		}
	}
	nt.BoundsUpdt()
}

// BoundsUpdt updates the Min / Max display bounds for 3D display.
func (nt *Network) BoundsUpdt() {
	mn := mat32.NewVec3Scalar(mat32.Infinity)
	mx := mat32.Vec3Zero
	for _, ly := range nt.Layers {
		ps := ly.Pos()
		sz := ly.Size()
		ru := ps
		ru.X += sz.X
		ru.Y += sz.Y
		mn.SetMin(ps)
		mx.SetMax(ru)
	}
	nt.MinPos = mn
	nt.MaxPos = mx
}

// ApplyParams applies the given parameter style Sheet to the network and
// its layers.  If setMsg is true, a message is printed to confirm each
// parameter that is set.  It always prints a message if a parameter fails
// to be set.  Returns true if any params were set, and error if there
// were any errors.
func (nt *Network) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	app, err := pars.Apply(nt, setMsg)
	if app {
		applied = true
	}
	if err != nil {
		rerr = err
	}
	for _, ly := range nt.Layers {
		app, err = ly.ApplyParams(pars, setMsg)
		if app {
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}
