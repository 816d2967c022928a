// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package medz

import (
	"math"

	"gopkg.in/check.v1"
)

type reshapeSuite struct{}

var _ = check.Suite(&reshapeSuite{})

func (s *reshapeSuite) TestRoundTrip(c *check.C) {
	recs := []AggregateRecord{
		{Gene: "G1", Sample: "A", TissueCount: 5, MedianZ: 2},
		{Gene: "G1", Sample: "B", TissueCount: 3, MedianZ: nan()},
		{Gene: "G2", Sample: "A", TissueCount: 0, MedianZ: nan()},
		{Gene: "G2", Sample: "B", TissueCount: 7, MedianZ: -1.25},
	}
	counts, zscores, err := Reshape(recs, []string{"G1", "G2"}, []string{"A", "B"})
	c.Assert(err, check.IsNil)
	c.Check(counts.Genes, check.DeepEquals, []string{"G1", "G2"})
	c.Check(counts.Samples, check.DeepEquals, []string{"A", "B"})
	for _, r := range recs {
		c.Check(int(counts.At(r.Gene, r.Sample)), check.Equals, r.TissueCount)
		z := zscores.At(r.Gene, r.Sample)
		if math.IsNaN(r.MedianZ) {
			c.Check(math.IsNaN(z), check.Equals, true, check.Commentf("%s/%s", r.Gene, r.Sample))
		} else {
			c.Check(z, check.Equals, r.MedianZ)
		}
	}
}

func (s *reshapeSuite) TestRowColumnOrder(c *check.C) {
	// Record order is table-like and irrelevant; rows and columns follow
	// the given gene and canonical sample orders.
	recs := []AggregateRecord{
		{Gene: "G2", Sample: "B", TissueCount: 2, MedianZ: 1},
		{Gene: "G1", Sample: "B", TissueCount: 4, MedianZ: 3},
		{Gene: "G2", Sample: "A", TissueCount: 1, MedianZ: 0},
		{Gene: "G1", Sample: "A", TissueCount: 3, MedianZ: -2},
	}
	counts, zscores, err := Reshape(recs, []string{"G2", "G1"}, []string{"B", "A"})
	c.Assert(err, check.IsNil)
	c.Check(counts.Data.At(0, 0), check.Equals, 2.0)
	c.Check(counts.Data.At(1, 1), check.Equals, 3.0)
	c.Check(zscores.Data.At(0, 1), check.Equals, 0.0)
	c.Check(zscores.Data.At(1, 0), check.Equals, 3.0)
}

func (s *reshapeSuite) TestMissingPair(c *check.C) {
	recs := []AggregateRecord{
		{Gene: "G1", Sample: "A", TissueCount: 5, MedianZ: 2},
	}
	_, _, err := Reshape(recs, []string{"G1"}, []string{"A", "B"})
	c.Assert(err, check.FitsTypeOf, &ReshapeError{})
	c.Check(err.(*ReshapeError).Gene, check.Equals, "G1")
	c.Check(err.(*ReshapeError).Sample, check.Equals, "B")
}
