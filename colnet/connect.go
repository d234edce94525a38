// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/emer/etable/etensor"
)

var (
	// ErrSegmentTrained is returned by Connect when the target segment has
	// already been claimed by a previous allocation.  Trained segments are
	// immutable: callers must select a different, untrained segment.
	ErrSegmentTrained = errors.New("colnet: segment is already trained")

	// ErrNoUntrainedSegment is returned when a branch's finite segment pool
	// has been exhausted and an allocation needed one more.
	ErrNoUntrainedSegment = errors.New("colnet: no untrained segment available on branch")

	// ErrUnsupportedDataFormat is returned when input data is not strictly
	// binary -- the model has no semantics for graded activation.
	ErrUnsupportedDataFormat = errors.New("colnet: unsupported data format: input values must be binary (0 or 1)")
)

// ConnStore holds the synaptic connectivity for all segments of one column
// layer, referencing source neurons in the previous layer.  Two
// behaviorally-equivalent representations are supported: a dense boolean
// adjacency over (segment, source) pairs, and a sparse per-segment source
// index list.  The availability matrix (Trained flags) is the only state
// mutated during training, and each segment is written exactly once, guarded
// by an atomic claim, so concurrent allocation workers can never double-write
// a segment.
type ConnStore struct {

	// use the sparse representation
	Sparse bool `desc:"use the sparse representation"`

	// total number of segments in the receiving layer (neurons x branches x segments)
	NSegs int `desc:"total number of segments in the receiving layer"`

	// number of synaptic input slots per segment
	NSyns int `desc:"number of synaptic input slots per segment"`

	// number of neurons in the previous (sending) layer
	PrevN int `desc:"number of neurons in the previous (sending) layer"`

	// dense adjacency: (segment, source) membership bits, NSegs x PrevN -- nil in sparse mode
	Dense *etensor.Bits `view:"-" desc:"dense adjacency: (segment, source) membership bits, NSegs x PrevN -- nil in sparse mode"`

	// sparse per-segment source index lists -- nil in dense mode
	SIdxs [][]int32 `view:"-" desc:"sparse per-segment source index lists -- nil in dense mode"`

	// number of wired slots per segment (both modes)
	SynN []int32 `view:"-" desc:"number of wired slots per segment (both modes)"`

	// availability matrix: per-segment trained flag (0 = untrained, 1 = trained), claimed by atomic compare-and-swap
	Trained []int32 `view:"-" desc:"availability matrix: per-segment trained flag, claimed by atomic compare-and-swap"`
}

// Build allocates storage for the given geometry.  All segments start
// untrained with no connections.
func (cs *ConnStore) Build(nsegs, nsyns, prevN int, sparse bool) {
	cs.Sparse = sparse
	cs.NSegs = nsegs
	cs.NSyns = nsyns
	cs.PrevN = prevN
	cs.SynN = make([]int32, nsegs)
	cs.Trained = make([]int32, nsegs)
	if sparse {
		cs.Dense = nil
		cs.SIdxs = make([][]int32, nsegs)
	} else {
		cs.SIdxs = nil
		cs.Dense = etensor.NewBits([]int{nsegs, prevN}, nil, []string{"Seg", "Src"})
	}
}

// IsTrained returns whether the given segment has been trained.
func (cs *ConnStore) IsTrained(seg int) bool {
	return atomic.LoadInt32(&cs.Trained[seg]) != 0
}

// claim atomically marks the segment trained, returning false if it was
// already claimed.  The winner is the segment's single writer.
func (cs *ConnStore) claim(seg int) bool {
	return atomic.CompareAndSwapInt32(&cs.Trained[seg], 0, 1)
}

// Connect wires the given segment to the given previous-layer source
// neurons and marks it trained.  Precondition: the segment is untrained --
// returns ErrSegmentTrained otherwise, leaving the existing wiring intact.
// At most NSyns sources are written (excess sources are ignored); fewer
// sources leave the remaining slots unconnected, and unconnected slots
// never contribute to activation.  Duplicate sources collapse to a single
// connection in both representations, so dense and sparse stores always
// count active inputs identically.
func (cs *ConnStore) Connect(seg int, srcs []int32) error {
	if !cs.claim(seg) {
		return ErrSegmentTrained
	}
	if len(srcs) > cs.NSyns {
		srcs = srcs[:cs.NSyns]
	}
	lst := make([]int32, 0, len(srcs))
	for _, si := range srcs {
		dup := false
		for _, ei := range lst {
			if ei == si {
				dup = true
				break
			}
		}
		if !dup {
			lst = append(lst, si)
		}
	}
	if cs.Sparse {
		cs.SIdxs[seg] = lst
	} else {
		off := seg * cs.PrevN
		for _, si := range lst {
			cs.Dense.Values.Set(off+int(si), true)
		}
	}
	cs.SynN[seg] = int32(len(lst))
	return nil
}

// ConnectedTo returns whether the segment listens to the given
// previous-layer neuron.  Works identically in both representations.
func (cs *ConnStore) ConnectedTo(seg, src int) bool {
	if cs.Sparse {
		for _, si := range cs.SIdxs[seg] {
			if int(si) == src {
				return true
			}
		}
		return false
	}
	return cs.Dense.Values.Index(seg*cs.PrevN + src)
}

// SegSrcs returns the source neuron indexes the segment is wired to.
// In sparse mode this is the stored list in wiring order; in dense mode it
// is the set of adjacency bits, ascending.  The returned slice must not be
// modified.
func (cs *ConnStore) SegSrcs(seg int) []int32 {
	if cs.Sparse {
		return cs.SIdxs[seg]
	}
	if cs.SynN[seg] == 0 {
		return nil
	}
	srcs := make([]int32, 0, cs.SynN[seg])
	off := seg * cs.PrevN
	for si := 0; si < cs.PrevN; si++ {
		if cs.Dense.Values.Index(off + si) {
			srcs = append(srcs, int32(si))
		}
	}
	return srcs
}

// NumActIn counts the segment's connected sources that are active in the
// given previous-layer snapshot.  This is the quantity compared against the
// segment threshold for the NMDA-spike condition.
func (cs *ConnStore) NumActIn(seg int, prevAct []bool) int {
	n := 0
	if cs.Sparse {
		for _, si := range cs.SIdxs[seg] {
			if prevAct[si] {
				n++
			}
		}
		return n
	}
	off := seg * cs.PrevN
	for si, act := range prevAct {
		if act && cs.Dense.Values.Index(off+si) {
			n++
		}
	}
	return n
}

// NumTrained returns the number of trained segments.
func (cs *ConnStore) NumTrained() int {
	n := 0
	for si := range cs.Trained {
		if atomic.LoadInt32(&cs.Trained[si]) != 0 {
			n++
		}
	}
	return n
}

// SetSrcs restores a trained segment's wiring directly, e.g. when loading
// connectivity from a file.  Unlike Connect it does not require the segment
// to be untrained.  Not for use during training.
func (cs *ConnStore) SetSrcs(seg int, srcs []int32) error {
	if seg < 0 || seg >= cs.NSegs {
		return fmt.Errorf("colnet.ConnStore: segment index %d out of range [0, %d)", seg, cs.NSegs)
	}
	atomic.StoreInt32(&cs.Trained[seg], 0)
	if !cs.Sparse {
		off := seg * cs.PrevN
		for si := 0; si < cs.PrevN; si++ {
			cs.Dense.Values.Set(off+si, false)
		}
	}
	cs.SynN[seg] = 0
	return cs.Connect(seg, srcs)
}
