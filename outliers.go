// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package medz

import (
	"bufio"
	"math"
	"os"
	"sort"
	"strings"
)

// OutlierPick is the single most extreme individual for one gene.
type OutlierPick struct {
	Gene        string
	Individual  string
	TissueCount int
	Z           float64
}

// PickOutliers selects, for each gene row of the Z table, the individual
// with the largest |Z|. Ties go to the first-occurring column. Genes whose
// row is entirely missing contribute no pick. Picks come out in gene input
// order.
func PickOutliers(zscores, counts *DenseTable) []OutlierPick {
	var picks []OutlierPick
	for gi, gene := range zscores.Genes {
		best := -1
		var bestAbs float64
		for si := range zscores.Samples {
			v := zscores.Data.At(gi, si)
			if math.IsNaN(v) {
				continue
			}
			if a := math.Abs(v); best < 0 || a > bestAbs {
				best, bestAbs = si, a
			}
		}
		if best < 0 {
			continue
		}
		picks = append(picks, OutlierPick{
			Gene:        gene,
			Individual:  zscores.Samples[best],
			TissueCount: int(counts.Data.At(gi, best)),
			Z:           zscores.Data.At(gi, best),
		})
	}
	return picks
}

// Threshold keeps picks with |Z| >= zmin and sorts them by descending |Z|.
// The sort is stable, so ties keep gene input order.
func Threshold(picks []OutlierPick, zmin float64) []OutlierPick {
	var keep []OutlierPick
	for _, p := range picks {
		if math.Abs(p.Z) >= zmin {
			keep = append(keep, p)
		}
	}
	sortPicksByAbsZ(keep)
	return keep
}

func sortPicksByAbsZ(picks []OutlierPick) {
	sort.SliceStable(picks, func(i, j int) bool {
		return math.Abs(picks[i].Z) > math.Abs(picks[j].Z)
	})
}

// Burden is the result of the per-individual outlier-burden filter.
// PickCounts covers every individual appearing in the thresholded table
// before any exclusion.
type Burden struct {
	PickCounts map[string]int
	Excluded   map[string]bool
	Surviving  []string
	Picks      []OutlierPick
}

// BurdenFilter counts thresholded picks per individual, excludes
// individuals with at least maxOutliers of them, and drops the excluded
// individuals' rows from the thresholded table. Surviving is the canonical
// sample list minus the excluded individuals, in canonical order.
func BurdenFilter(thresholded []OutlierPick, samples []string, maxOutliers int) Burden {
	b := Burden{
		PickCounts: map[string]int{},
		Excluded:   map[string]bool{},
	}
	for _, p := range thresholded {
		b.PickCounts[p.Individual]++
	}
	for ind, n := range b.PickCounts {
		if n >= maxOutliers {
			b.Excluded[ind] = true
		}
	}
	for _, s := range samples {
		if !b.Excluded[s] {
			b.Surviving = append(b.Surviving, s)
		}
	}
	for _, p := range thresholded {
		if !b.Excluded[p.Individual] {
			b.Picks = append(b.Picks, p)
		}
	}
	return b
}

// FilterPicks drops picks belonging to excluded individuals, then sorts by
// descending |Z|. This path filters first and sorts second, whereas the
// thresholded table is sorted before the burden counts are taken; the two
// orders of operations give different tie ordering in the output files and
// must not be unified.
func FilterPicks(picks []OutlierPick, excluded map[string]bool) []OutlierPick {
	var keep []OutlierPick
	for _, p := range picks {
		if !excluded[p.Individual] {
			keep = append(keep, p)
		}
	}
	sortPicksByAbsZ(keep)
	return keep
}

// LoadIDList reads a single-column individual-ID list, no header.
func LoadIDList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// IntersectIDs keeps the IDs present in the surviving set, preserving the
// list's relative order. Unknown IDs drop silently.
func IntersectIDs(ids []string, surviving map[string]bool) []string {
	var keep []string
	for _, id := range ids {
		if surviving[id] {
			keep = append(keep, id)
		}
	}
	return keep
}
