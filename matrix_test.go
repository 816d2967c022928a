// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package medz

import (
	"io/ioutil"
	"math"
	"os"

	"github.com/klauspost/pgzip"
	"gopkg.in/check.v1"
)

type matrixSuite struct{}

var _ = check.Suite(&matrixSuite{})

func (s *matrixSuite) TestLoadGeneTypes(c *check.C) {
	keep, err := LoadGeneTypes("testdata/gene_types.txt")
	c.Assert(err, check.IsNil)
	c.Check(keep, check.DeepEquals, map[string]bool{
		"GENE1": true,
		"GENE2": true,
		"GENE3": true,
		"GENE5": true,
	})
}

func (s *matrixSuite) TestLoadGeneTypesMalformed(c *check.C) {
	path := c.MkDir() + "/types.txt"
	err := ioutil.WriteFile(path, []byte("GENE1\tprotein_coding\nGENE2\n"), 0644)
	c.Assert(err, check.IsNil)
	_, err = LoadGeneTypes(path)
	c.Assert(err, check.FitsTypeOf, &DataFormatError{})
	c.Check(err.(*DataFormatError).Line, check.Equals, 2)
}

func (s *matrixSuite) TestLoadExpressionMatrix(c *check.C) {
	keep, err := LoadGeneTypes("testdata/gene_types.txt")
	c.Assert(err, check.IsNil)
	m, err := LoadExpressionMatrix("testdata/normalized.test.txt", keep)
	c.Assert(err, check.IsNil)
	c.Check(m.Samples, check.DeepEquals, []string{"IND1", "IND2", "IND3"})
	c.Check(m.Genes, check.DeepEquals, []string{"GENE1", "GENE2", "GENE3", "GENE5"})

	rows := m.TissueRows("GENE1")
	c.Assert(rows, check.HasLen, 5)
	c.Check(rows[0][0], check.Equals, 1.0)
	c.Check(rows[3][0], check.Equals, -6.0)
	c.Check(math.IsNaN(rows[0][2]), check.Equals, true)

	c.Check(m.TissueRows("GENE4"), check.IsNil)
	c.Check(m.TissueRows("GENE2"), check.HasLen, 3)
}

func (s *matrixSuite) TestLoadExpressionMatrixAllGenes(c *check.C) {
	m, err := LoadExpressionMatrix("testdata/normalized.test.txt", nil)
	c.Assert(err, check.IsNil)
	c.Check(m.Genes, check.HasLen, 5)
	c.Check(m.TissueRows("GENE4"), check.HasLen, 1)
}

func (s *matrixSuite) TestLoadExpressionMatrixGzip(c *check.C) {
	raw, err := ioutil.ReadFile("testdata/normalized.test.txt")
	c.Assert(err, check.IsNil)
	path := c.MkDir() + "/normalized.test.txt.gz"
	f, err := os.Create(path)
	c.Assert(err, check.IsNil)
	gzw := pgzip.NewWriter(f)
	_, err = gzw.Write(raw)
	c.Assert(err, check.IsNil)
	c.Assert(gzw.Close(), check.IsNil)
	c.Assert(f.Close(), check.IsNil)

	m, err := LoadExpressionMatrix(path, nil)
	c.Assert(err, check.IsNil)
	c.Check(m.Samples, check.DeepEquals, []string{"IND1", "IND2", "IND3"})
	c.Check(m.Genes, check.HasLen, 5)
	c.Check(m.TissueRows("GENE1")[4][1], check.Equals, 1.5)
}

func (s *matrixSuite) TestBadHeader(c *check.C) {
	for _, content := range []string{
		"",
		"gene_id\tDescription\tIND1\nGENE1\tAdipose\t1\n",
		"Gene\tDescription\n",
	} {
		path := c.MkDir() + "/matrix.txt"
		err := ioutil.WriteFile(path, []byte(content), 0644)
		c.Assert(err, check.IsNil)
		_, err = LoadExpressionMatrix(path, nil)
		c.Check(err, check.FitsTypeOf, &DataFormatError{}, check.Commentf("content %q", content))
	}
}

func (s *matrixSuite) TestRaggedRow(c *check.C) {
	path := c.MkDir() + "/matrix.txt"
	err := ioutil.WriteFile(path, []byte("Gene\tDescription\tIND1\tIND2\nGENE1\tAdipose\t1\n"), 0644)
	c.Assert(err, check.IsNil)
	_, err = LoadExpressionMatrix(path, nil)
	c.Assert(err, check.FitsTypeOf, &DataFormatError{})
	c.Check(err.(*DataFormatError).Line, check.Equals, 2)
}

func (s *matrixSuite) TestBadCell(c *check.C) {
	path := c.MkDir() + "/matrix.txt"
	err := ioutil.WriteFile(path, []byte("Gene\tDescription\tIND1\nGENE1\tAdipose\tbogus\n"), 0644)
	c.Assert(err, check.IsNil)
	_, err = LoadExpressionMatrix(path, nil)
	c.Check(err, check.FitsTypeOf, &DataFormatError{})
}
