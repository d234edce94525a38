// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"fmt"

	"github.com/goki/ki/ints"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// Graph export for visualization collaborators: the network's current
// activation snapshot and committed connectivity, as plain nodes and edges.
// Rendering is entirely external -- this code only exposes read-only state,
// at three granularities:
//   - NeuronGraph: the full internal state of one selected neuron (branches,
//     segments, and optionally its connected sources).
//   - NetGraph(NeuronLevel): one node per neuron network-wide, with
//     inter-neuron connectivity edges, segregated by layer, column and type.
//   - NetGraph(SynLevel): full internal state of every neuron, down to
//     per-input connectivity edges.  Can be very large.

// GraphLevels selects the granularity of a network-wide graph export.
type GraphLevels int32

const (
	// NeuronLevel exports one node per neuron with neuron-to-neuron edges.
	NeuronLevel GraphLevels = iota

	// SynLevel additionally exports branch and segment nodes and
	// per-input edges for every neuron.
	SynLevel

	GraphLevelsN
)

var KiT_GraphLevels = kit.Enums.AddEnum(GraphLevelsN, kit.NotBitFlag, nil)

func (ev GraphLevels) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *GraphLevels) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

func (ev GraphLevels) String() string {
	switch ev {
	case NeuronLevel:
		return "NeuronLevel"
	case SynLevel:
		return "SynLevel"
	}
	return "GraphLevelsN"
}

// NodeKinds enumerates the kinds of nodes in an exported graph.
type NodeKinds int32

const (
	NeuronNode NodeKinds = iota
	BranchNode
	SegmentNode
	NodeKindsN
)

var KiT_NodeKinds = kit.Enums.AddEnum(NodeKindsN, kit.NotBitFlag, nil)

func (ev NodeKinds) String() string {
	switch ev {
	case NeuronNode:
		return "Neuron"
	case BranchNode:
		return "Branch"
	case SegmentNode:
		return "Segment"
	}
	return "NodeKindsN"
}

// GraphNode is one exported node: a neuron, branch or segment, with its
// current activation state and a display position.
type GraphNode struct {

	// unique node id, e.g. L1N3, L1N3B0, L1N3B0S1
	ID string `desc:"unique node id, e.g. L1N3, L1N3B0, L1N3B0S1"`

	// node kind
	Kind NodeKinds `desc:"node kind"`

	// layer index
	Layer int `desc:"layer index"`

	// neuron index within layer
	Neur int `desc:"neuron index within layer"`

	// column index (-1 for input layer)
	Col int `desc:"column index (-1 for input layer)"`

	// neuron type (valid for column-layer nodes)
	Typ NeuronTypes `desc:"neuron type (valid for column-layer nodes)"`

	// whether the node is active on the current cycle
	Act bool `desc:"whether the node is active on the current cycle"`

	// display position, derived from the layer layout
	Pos mat32.Vec3 `desc:"display position, derived from the layer layout"`
}

// GraphEdge is a directed edge from a source node to a receiving node.
type GraphEdge struct {
	From string `desc:"source node id"`
	To   string `desc:"receiving node id"`
}

// Graph is a read-only export of activation + connectivity state.
type Graph struct {
	Nodes []GraphNode `desc:"exported nodes"`
	Edges []GraphEdge `desc:"exported edges"`
}

func neurID(li, ni int) string        { return fmt.Sprintf("L%dN%d", li, ni) }
func brID(li, ni, bi int) string      { return fmt.Sprintf("L%dN%dB%d", li, ni, bi) }
func segID(li, ni, bi, si int) string { return fmt.Sprintf("L%dN%dB%dS%d", li, ni, bi, si) }

// neurNode builds the exported node for one neuron.
func (nt *Network) neurNode(ly *Layer, ni int) GraphNode {
	nrn := &ly.Neurons[ni]
	pos := ly.Pos()
	pos.X += float32(ni)
	return GraphNode{ID: neurID(ly.Idx, ni), Kind: NeuronNode, Layer: ly.Idx, Neur: ni,
		Col: int(nrn.Col), Typ: nrn.Typ, Act: nrn.Act, Pos: pos}
}

// addDendrites appends branch and segment nodes and edges for one neuron,
// plus per-input edges from connected previous-layer neurons if withInputs.
func (nt *Network) addDendrites(g *Graph, ly *Layer, ni int, withInputs bool) {
	cf := &nt.Config
	nid := neurID(ly.Idx, ni)
	base := nt.neurNode(ly, ni)
	for bi := 0; bi < cf.NBranches; bi++ {
		bid := brID(ly.Idx, ni, bi)
		bnd := base
		bnd.ID = bid
		bnd.Kind = BranchNode
		bnd.Act = ly.BrAct[ly.BrIdx(ni, bi)]
		bnd.Pos.Y += float32(bi + 1)
		g.Nodes = append(g.Nodes, bnd)
		g.Edges = append(g.Edges, GraphEdge{From: bid, To: nid})
		for si := 0; si < cf.NSegs; si++ {
			sgi := ly.SegIdx(ni, bi, si)
			sid := segID(ly.Idx, ni, bi, si)
			snd := base
			snd.ID = sid
			snd.Kind = SegmentNode
			snd.Act = ly.SegAct[sgi]
			snd.Pos.Y += float32(bi + 1)
			snd.Pos.Z += float32(si+1) / float32(cf.NSegs+1)
			g.Nodes = append(g.Nodes, snd)
			g.Edges = append(g.Edges, GraphEdge{From: sid, To: bid})
			if !withInputs {
				continue
			}
			for _, src := range ly.Conns.SegSrcs(sgi) {
				g.Edges = append(g.Edges, GraphEdge{From: neurID(ly.Idx-1, int(src)), To: sid})
			}
		}
	}
}

// NeuronGraph exports the full internal state of one neuron: its branch and
// segment nodes with current activation, and, if withInputs, the
// previous-layer neurons each segment is wired to.
func (nt *Network) NeuronGraph(li, ni int, withInputs bool) (*Graph, error) {
	if li < 1 || li >= len(nt.Layers) {
		return nil, fmt.Errorf("colnet.Network %s: NeuronGraph: layer %d is not a column layer", nt.Nm, li)
	}
	ly := nt.Layers[li]
	if ni < 0 || ni >= ly.NNeur() {
		return nil, fmt.Errorf("colnet.Network %s: NeuronGraph: neuron %d out of range in layer %s", nt.Nm, ni, ly.Nm)
	}
	g := &Graph{}
	g.Nodes = append(g.Nodes, nt.neurNode(ly, ni))
	nt.addDendrites(g, ly, ni, withInputs)
	if withInputs {
		prev := nt.Layers[li-1]
		seen := map[int32]bool{}
		for bi := 0; bi < nt.Config.NBranches; bi++ {
			for si := 0; si < nt.Config.NSegs; si++ {
				for _, src := range ly.Conns.SegSrcs(ly.SegIdx(ni, bi, si)) {
					if !seen[src] {
						seen[src] = true
						g.Nodes = append(g.Nodes, nt.neurNode(prev, int(src)))
					}
				}
			}
		}
	}
	return g, nil
}

// NetGraph exports the whole network at the given granularity.  At
// NeuronLevel, an edge connects a previous-layer neuron to a neuron that
// has any trained segment wired to it; at SynLevel, branch and segment
// nodes are included and edges attach to the exact segment.
func (nt *Network) NetGraph(level GraphLevels) *Graph {
	g := &Graph{}
	maxN := 0
	for _, ly := range nt.Layers {
		maxN = ints.MaxInt(maxN, ly.NNeur())
	}
	for _, ly := range nt.Layers {
		xoff := float32(maxN-ly.NNeur()) / 2
		for ni := range ly.Neurons {
			nd := nt.neurNode(ly, ni)
			nd.Pos.X += xoff
			g.Nodes = append(g.Nodes, nd)
		}
		if ly.Typ == Input {
			continue
		}
		if level == SynLevel {
			for ni := range ly.Neurons {
				nt.addDendrites(g, ly, ni, true)
			}
			continue
		}
		for ni := range ly.Neurons {
			seen := map[int32]bool{}
			for bi := 0; bi < nt.Config.NBranches; bi++ {
				for si := 0; si < nt.Config.NSegs; si++ {
					for _, src := range ly.Conns.SegSrcs(ly.SegIdx(ni, bi, si)) {
						if !seen[src] {
							seen[src] = true
							g.Edges = append(g.Edges, GraphEdge{From: neurID(ly.Idx-1, int(src)), To: neurID(ly.Idx, ni)})
						}
					}
				}
			}
		}
	}
	return g
}
