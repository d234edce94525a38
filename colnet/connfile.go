// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colnet

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/goki/ki/indent"
)

// Connectivity files: the trained state of a network is its committed
// segment wiring, saved in a JSON text format (gzip compressed if the
// filename has a .gz extension).  Only trained segments are written.
// The file is representation-independent: a network saved in dense mode
// can be opened in sparse mode and vice versa.

// ConnSeg is the wiring of one trained segment for saving / loading.
type ConnSeg struct {
	Seg  int     `desc:"flat segment index within the layer"`
	Srcs []int32 `desc:"previous-layer source neuron indexes"`
}

// ConnLayer is the connectivity of one layer for saving / loading.
type ConnLayer struct {
	Layer string    `desc:"layer name"`
	Segs  []ConnSeg `desc:"trained segments"`
}

// ConnNetwork is the full network connectivity for saving / loading.
type ConnNetwork struct {
	Network  string            `desc:"network name"`
	MetaData map[string]string `desc:"optional metadata, e.g. samples trained"`
	Layers   []ConnLayer       `desc:"per-layer connectivity"`
}

// SaveConnJSON saves network connectivity (the full trained state) to a
// JSON-formatted file.  If filename has .gz extension, then the file is
// gzip compressed.
func (nt *Network) SaveConnJSON(filename string) error {
	fp, err := os.Create(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		defer gzr.Close()
		nt.WriteConnJSON(gzr)
	} else {
		nt.WriteConnJSON(fp)
	}
	return nil
}

// OpenConnJSON opens network connectivity from a JSON-formatted file.
// If filename has .gz extension, then the file is gzip uncompressed.
func (nt *Network) OpenConnJSON(filename string) error {
	fp, err := os.Open(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		defer gzr.Close()
		if err != nil {
			log.Println(err)
			return err
		}
		return nt.ReadConnJSON(gzr)
	}
	return nt.ReadConnJSON(fp)
}

// WriteConnJSON writes the connectivity of all trained segments in a JSON
// text format.  We build in the indentation logic to make it much faster
// and more efficient than a generic marshal of the whole network.
func (nt *Network) WriteConnJSON(w io.Writer) {
	depth := 0
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Network\": %q,\n", nt.Nm)))
	if nt.MetaData != nil {
		w.Write(indent.TabBytes(depth))
		md, _ := json.Marshal(nt.MetaData)
		w.Write([]byte("\"MetaData\": "))
		w.Write(md)
		w.Write([]byte(",\n"))
	}
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"Layers\": [\n"))
	depth++
	nl := len(nt.Layers)
	for li := 1; li < nl; li++ {
		ly := nt.Layers[li]
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("{\"Layer\": %q,\n", ly.Nm)))
		depth++
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Segs\": [\n"))
		depth++
		first := true
		for sgi := 0; sgi < ly.Conns.NSegs; sgi++ {
			if !ly.Conns.IsTrained(sgi) {
				continue
			}
			if !first {
				w.Write([]byte(",\n"))
			}
			first = false
			w.Write(indent.TabBytes(depth))
			sb, _ := json.Marshal(ConnSeg{Seg: sgi, Srcs: ly.Conns.SegSrcs(sgi)})
			w.Write(sb)
		}
		w.Write([]byte("\n"))
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("]\n"))
		depth--
		w.Write(indent.TabBytes(depth))
		if li == nl-1 {
			w.Write([]byte("}\n"))
		} else {
			w.Write([]byte("},\n"))
		}
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}\n"))
}

// ReadConnJSON reads network connectivity in the JSON text format and sets
// the trained state accordingly.  The network must already be built with a
// matching topology; layers are matched by name.
func (nt *Network) ReadConnJSON(r io.Reader) error {
	cn := &ConnNetwork{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(cn); err != nil {
		log.Println(err)
		return err
	}
	return nt.SetConns(cn)
}

// SetConns sets the connectivity for this network from decoded values.
func (nt *Network) SetConns(cn *ConnNetwork) error {
	if cn.Network != "" {
		nt.Nm = cn.Network
	}
	if cn.MetaData != nil {
		if nt.MetaData == nil {
			nt.MetaData = cn.MetaData
		} else {
			for mk, mv := range cn.MetaData {
				nt.MetaData[mk] = mv
			}
		}
	}
	var err error
	for li := range cn.Layers {
		cl := &cn.Layers[li]
		ly, er := nt.LayerByNameTry(cl.Layer)
		if er != nil {
			err = er
			continue
		}
		for si := range cl.Segs {
			sg := &cl.Segs[si]
			if er := ly.Conns.SetSrcs(sg.Seg, sg.Srcs); er != nil {
				log.Println(er)
				err = er
			}
		}
	}
	return err
}
