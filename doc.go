// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package colnet is the overall repository for the columnar excitatory /
inhibitory (E/I) dendritic network model implemented in the Go language
(golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-repositories:

* colnet: the core model: column / layer structure, the dendritic
activation engine (segment threshold, branch OR, neuron AND), the
segment allocation training algorithm, the inference decision rule,
connectivity persistence, and read-only graph export for visualization.

* examples: these compile into runnable programs. examples/patterns is
the standard starting point: it trains the network online on noisy
binary class-prototype patterns and reports train / test accuracy.
*/
package colnet
