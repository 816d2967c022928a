// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package medz

import (
	"math"
	"sort"
)

// AggregateRecord is the cross-tissue summary for one (gene, individual)
// pair. MedianZ is NaN when no tissue was measured, or after masking.
type AggregateRecord struct {
	Gene        string
	Sample      string
	TissueCount int
	MedianZ     float64
}

// Aggregate reduces each gene's tissue rows to one AggregateRecord per
// (gene, sample): the number of non-missing tissue values and their median.
// Genes are processed by a pool of the given size; records land in slots
// indexed by gene and sample position, so the result is identical for any
// pool size.
func Aggregate(m *ExpressionMatrix, threads int) []AggregateRecord {
	ns := len(m.Samples)
	recs := make([]AggregateRecord, len(m.Genes)*ns)
	pool := newThrottle(threads)
	for gi, gene := range m.Genes {
		gi, gene := gi, gene
		pool.Acquire()
		go func() {
			defer pool.Release()
			rows := m.TissueRows(gene)
			scratch := make([]float64, 0, len(rows))
			for si, sample := range m.Samples {
				scratch = scratch[:0]
				for _, row := range rows {
					if v := row[si]; !math.IsNaN(v) {
						scratch = append(scratch, v)
					}
				}
				recs[gi*ns+si] = AggregateRecord{
					Gene:        gene,
					Sample:      sample,
					TissueCount: len(scratch),
					MedianZ:     median(scratch),
				}
			}
		}()
	}
	pool.Wait()
	return recs
}

// MaskLowCounts forces MedianZ to missing for every record backed by fewer
// than minTissues measured tissues. It runs as its own pass, after all
// medians have been computed.
func MaskLowCounts(recs []AggregateRecord, minTissues int) {
	for i := range recs {
		if recs[i].TissueCount < minTissues {
			recs[i].MedianZ = math.NaN()
		}
	}
}

// median sorts xs in place. The median of an empty set is NaN; even-length
// sets average the two middle values.
func median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}
