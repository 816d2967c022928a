// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package medz

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ReshapeError indicates a (gene, sample) pair with no aggregate record.
// That is an aggregator bug, not bad input data.
type ReshapeError struct {
	Gene   string
	Sample string
}

func (e *ReshapeError) Error() string {
	return fmt.Sprintf("reshape: no aggregate record for gene %s sample %s", e.Gene, e.Sample)
}

// DenseTable is a dense gene x sample matrix with named rows and columns.
// Genes keep the expression matrix's first-appearance order, Samples the
// canonical header order.
type DenseTable struct {
	Genes   []string
	Samples []string
	Data    *mat.Dense

	rowOf map[string]int
	colOf map[string]int
}

func newDenseTable(genes, samples []string) *DenseTable {
	t := &DenseTable{
		Genes:   genes,
		Samples: samples,
		rowOf:   make(map[string]int, len(genes)),
		colOf:   make(map[string]int, len(samples)),
	}
	if len(genes) > 0 && len(samples) > 0 {
		t.Data = mat.NewDense(len(genes), len(samples), nil)
	}
	for i, g := range genes {
		t.rowOf[g] = i
	}
	for j, s := range samples {
		t.colOf[s] = j
	}
	return t
}

// At returns the cell for a gene and sample by name.
func (t *DenseTable) At(gene, sample string) float64 {
	return t.Data.At(t.rowOf[gene], t.colOf[sample])
}

// Reshape pivots the long-form aggregate records into two dense tables,
// tissue counts and median Z-scores. Every (gene, sample) pair must be
// covered by a record.
func Reshape(recs []AggregateRecord, genes, samples []string) (counts, zscores *DenseTable, err error) {
	type cell struct {
		n int
		z float64
	}
	byKey := make(map[[2]string]cell, len(recs))
	for _, r := range recs {
		byKey[[2]string{r.Gene, r.Sample}] = cell{r.TissueCount, r.MedianZ}
	}
	counts = newDenseTable(genes, samples)
	zscores = newDenseTable(genes, samples)
	for gi, g := range genes {
		for si, s := range samples {
			c, ok := byKey[[2]string{g, s}]
			if !ok {
				return nil, nil, &ReshapeError{Gene: g, Sample: s}
			}
			counts.Data.Set(gi, si, float64(c.n))
			zscores.Data.Set(gi, si, c.z)
		}
	}
	return counts, zscores, nil
}
