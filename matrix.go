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
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// DataFormatError indicates a malformed or internally inconsistent input
// matrix or reference file.
type DataFormatError struct {
	Path string
	Line int
	Msg  string
}

func (e *DataFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

var allowedGeneTypes = map[string]bool{
	"protein_coding": true,
	"lincRNA":        true,
}

// LoadGeneTypes reads a two-column gene-type reference (geneID, typeLabel,
// tab-separated, no header) and returns the set of gene IDs whose type is
// protein_coding or lincRNA.
func LoadGeneTypes(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keep := map[string]bool{}
	lineno := 0
	scanner := bufio.NewScanner(bufio.NewReaderSize(f, 1<<20))
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, &DataFormatError{Path: path, Line: lineno, Msg: "expected gene ID and type label"}
		}
		if allowedGeneTypes[fields[1]] {
			keep[fields[0]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return keep, nil
}

// ExpressionMatrix holds a long-format expression matrix: for each gene, one
// row of per-individual values per tissue in which the gene was measured.
// Missing measurements are NaN. Genes keeps first-appearance order; Samples
// keeps the header's column order, which is the canonical individual order
// for everything downstream.
type ExpressionMatrix struct {
	Samples []string
	Genes   []string
	blocks  map[string]*geneBlock
}

type geneBlock struct {
	tissues []string
	rows    [][]float64
}

// TissueRows returns the per-tissue value rows for one gene, each of length
// len(m.Samples).
func (m *ExpressionMatrix) TissueRows(gene string) [][]float64 {
	if b := m.blocks[gene]; b != nil {
		return b.rows
	}
	return nil
}

// LoadExpressionMatrix reads a tab-delimited expression matrix with header
// "Gene	Description	sample...", one row per (gene,tissue) measurement.
// Rows whose gene is not in keep are skipped (a nil keep loads everything).
// Cells parse as float64; "NA" and empty cells are missing. Paths ending in
// .gz are decompressed transparently.
func LoadExpressionMatrix(path string, keep map[string]bool) (*ExpressionMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	digest, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	var rdr io.Reader = io.TeeReader(bufio.NewReaderSize(f, 1<<22), digest)
	if strings.HasSuffix(path, ".gz") {
		gzr, err := pgzip.NewReader(rdr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gzr.Close()
		rdr = gzr
	}

	scanner := bufio.NewScanner(rdr)
	scanner.Buffer(make([]byte, 1<<20), 1<<26)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, &DataFormatError{Path: path, Msg: "missing header row"}
	}
	header := strings.Split(scanner.Text(), "\t")
	if header[0] != "Gene" || len(header) < 3 {
		return nil, &DataFormatError{Path: path, Line: 1, Msg: "header must be Gene, Description, then one column per individual"}
	}
	m := &ExpressionMatrix{
		Samples: header[2:],
		blocks:  map[string]*geneBlock{},
	}

	lineno := 1
	nrows := 0
	for scanner.Scan() {
		lineno++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != len(header) {
			return nil, &DataFormatError{Path: path, Line: lineno, Msg: fmt.Sprintf("%d fields, expected %d", len(fields), len(header))}
		}
		gene := fields[0]
		if keep != nil && !keep[gene] {
			continue
		}
		row := make([]float64, len(m.Samples))
		for i, s := range fields[2:] {
			row[i], err = parseCell(s)
			if err != nil {
				return nil, &DataFormatError{Path: path, Line: lineno, Msg: fmt.Sprintf("column %s: %s", m.Samples[i], err)}
			}
		}
		b := m.blocks[gene]
		if b == nil {
			b = &geneBlock{}
			m.blocks[gene] = b
			m.Genes = append(m.Genes, gene)
		}
		b.tissues = append(b.tissues, fields[1])
		b.rows = append(b.rows, row)
		nrows++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	log.Printf("%s: %d genes x %d samples (%d measurement rows), blake2b %x", path, len(m.Genes), len(m.Samples), nrows, digest.Sum(nil))
	return m, nil
}

func parseCell(s string) (float64, error) {
	if s == "" || s == "NA" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
