// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package medz

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/kshedden/gonpy"
)

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bufw := bufio.NewWriter(f)
	if err := fn(bufw); err != nil {
		f.Close()
		return err
	}
	if err := bufw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMatrixHeader(w io.Writer, samples []string) error {
	_, err := fmt.Fprintln(w, strings.Join(append([]string{"GENE"}, samples...), "\t"))
	return err
}

// writeCountsMatrix writes the dense tissue-count table: header GENE plus
// sample IDs, one row of integer counts per gene.
func writeCountsMatrix(w io.Writer, t *DenseTable) error {
	if err := writeMatrixHeader(w, t.Samples); err != nil {
		return err
	}
	fields := make([]string, len(t.Samples)+1)
	for gi, gene := range t.Genes {
		fields[0] = gene
		for si := range t.Samples {
			fields[si+1] = strconv.Itoa(int(t.Data.At(gi, si)))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// writeZMatrix writes the dense median-Z table; missing cells are blank.
func writeZMatrix(w io.Writer, t *DenseTable) error {
	if err := writeMatrixHeader(w, t.Samples); err != nil {
		return err
	}
	fields := make([]string, len(t.Samples)+1)
	for gi, gene := range t.Genes {
		fields[0] = gene
		for si := range t.Samples {
			fields[si+1] = formatZ(t.Data.At(gi, si))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func writePicks(w io.Writer, picks []OutlierPick) error {
	if _, err := fmt.Fprintln(w, "GENE\tINDS\tDFS\tZ"); err != nil {
		return err
	}
	for _, p := range picks {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Gene, p.Individual, p.TissueCount, formatZ(p.Z)); err != nil {
			return err
		}
	}
	return nil
}

// writePickCounts writes one individual per line with its thresholded-pick
// count, sorted by individual ID.
func writePickCounts(w io.Writer, counts map[string]int) error {
	inds := make([]string, 0, len(counts))
	for ind := range counts {
		inds = append(inds, ind)
	}
	sort.Strings(inds)
	for _, ind := range inds {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", ind, counts[ind]); err != nil {
			return err
		}
	}
	return nil
}

func writeIDList(w io.Writer, ids []string) error {
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}

func formatZ(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeNumpyFloat64 writes a DenseTable as a row-major float64 .npy array.
func writeNumpyFloat64(w io.Writer, t *DenseTable) error {
	npw, err := gonpy.NewWriter(nopCloser{w})
	if err != nil {
		return err
	}
	data := make([]float64, 0, len(t.Genes)*len(t.Samples))
	for gi := range t.Genes {
		for si := range t.Samples {
			data = append(data, t.Data.At(gi, si))
		}
	}
	npw.Shape = []int{len(t.Genes), len(t.Samples)}
	return npw.WriteFloat64(data)
}

// writeNumpyInt32 writes a DenseTable as a row-major int32 .npy array.
func writeNumpyInt32(w io.Writer, t *DenseTable) error {
	npw, err := gonpy.NewWriter(nopCloser{w})
	if err != nil {
		return err
	}
	data := make([]int32, 0, len(t.Genes)*len(t.Samples))
	for gi := range t.Genes {
		for si := range t.Samples {
			data = append(data, int32(t.Data.At(gi, si)))
		}
	}
	npw.Shape = []int{len(t.Genes), len(t.Samples)}
	return npw.WriteInt32(data)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
