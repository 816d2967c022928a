// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package medz

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"

	log "github.com/sirupsen/logrus"
)

type callOutliers struct {
	threads     int
	minTissues  int
	zThreshold  float64
	maxOutliers int
}

type runPaths struct {
	expression string
	geneTypes  string
	wgsEUR     string
	wgsAll     string
	outputDir  string
	suffix     string
	numpy      bool
}

func (cmd *callOutliers) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [options] suffix\n\nOptions:\n", prog)
		flags.PrintDefaults()
	}
	pprofAddr := flags.String("pprof", "", "serve Go profile data at http://`[addr]:port`")
	loglevel := flags.String("loglevel", "info", "logging threshold (debug, info, ...)")
	inputDir := flags.String("input-dir", ".", "input `directory`")
	outputDir := flags.String("output-dir", ".", "output `directory`")
	geneTypes := flags.String("gene-types", "", "gene-type reference `file` (default input-dir/gene_types.txt)")
	wgsEUR := flags.String("wgs-eur", "", "European-ancestry WGS individual list `file` (default input-dir/wgs_eur.txt)")
	wgsAll := flags.String("wgs-all", "", "all-ancestry WGS individual list `file` (default input-dir/wgs_all.txt)")
	numpy := flags.Bool("numpy", false, "also write the count and Z matrices as .npy with row/column label files")
	flags.Float64Var(&cmd.zThreshold, "z-threshold", 2, "minimum `|Z|` for a pick to count as an outlier")
	flags.IntVar(&cmd.maxOutliers, "max-outliers", 50, "exclude individuals with at least `N` thresholded outliers")
	flags.IntVar(&cmd.minTissues, "min-tissues", 5, "mask the median Z when fewer than `N` tissues are measured")
	flags.IntVar(&cmd.threads, "threads", runtime.GOMAXPROCS(0), "aggregation `worker` count")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}
	suffix := flags.Arg(0)

	if *pprofAddr != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}
	lvl, err := log.ParseLevel(*loglevel)
	if err != nil {
		return 2
	}
	log.SetLevel(lvl)

	paths := runPaths{
		expression: expressionPath(*inputDir, suffix),
		geneTypes:  *geneTypes,
		wgsEUR:     *wgsEUR,
		wgsAll:     *wgsAll,
		outputDir:  *outputDir,
		suffix:     suffix,
		numpy:      *numpy,
	}
	if paths.geneTypes == "" {
		paths.geneTypes = filepath.Join(*inputDir, "gene_types.txt")
	}
	if paths.wgsEUR == "" {
		paths.wgsEUR = filepath.Join(*inputDir, "wgs_eur.txt")
	}
	if paths.wgsAll == "" {
		paths.wgsAll = filepath.Join(*inputDir, "wgs_all.txt")
	}
	err = cmd.run(paths)
	if err != nil {
		return 1
	}
	return 0
}

// expressionPath resolves input-dir/normalized.<suffix>.txt, falling back
// to the .gz variant when only that exists.
func expressionPath(dir, suffix string) string {
	path := filepath.Join(dir, "normalized."+suffix+".txt")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, err := os.Stat(path + ".gz"); err == nil {
			return path + ".gz"
		}
	}
	return path
}

func (cmd *callOutliers) run(paths runPaths) error {
	keep, err := LoadGeneTypes(paths.geneTypes)
	if err != nil {
		return err
	}
	log.Printf("%s: %d genes in allowed classes", paths.geneTypes, len(keep))

	m, err := LoadExpressionMatrix(paths.expression, keep)
	if err != nil {
		return err
	}

	recs := Aggregate(m, cmd.threads)
	MaskLowCounts(recs, cmd.minTissues)
	counts, zscores, err := Reshape(recs, m.Genes, m.Samples)
	if err != nil {
		return err
	}

	picks := PickOutliers(zscores, counts)
	top := Threshold(picks, cmd.zThreshold)
	burden := BurdenFilter(top, m.Samples, cmd.maxOutliers)
	filtered := FilterPicks(picks, burden.Excluded)
	log.Printf("%d picks, %d at |Z| >= %v, %d individuals excluded, %d surviving", len(picks), len(top), cmd.zThreshold, len(burden.Excluded), len(burden.Surviving))

	surviving := make(map[string]bool, len(burden.Surviving))
	for _, ind := range burden.Surviving {
		surviving[ind] = true
	}
	wgsEUR, err := LoadIDList(paths.wgsEUR)
	if err != nil {
		return err
	}
	wgsAll, err := LoadIDList(paths.wgsAll)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(paths.outputDir, 0777); err != nil {
		return err
	}
	out := newThrottle(8)
	write := func(name string, fn func(io.Writer) error) {
		path := filepath.Join(paths.outputDir, name+"."+paths.suffix+".txt")
		out.Acquire()
		go func() {
			defer out.Release()
			out.Report(writeFile(path, fn))
		}()
	}
	writeNpy := func(name string, fn func(io.Writer) error) {
		path := filepath.Join(paths.outputDir, name+"."+paths.suffix+".npy")
		out.Acquire()
		go func() {
			defer out.Release()
			out.Report(writeFile(path, fn))
		}()
	}
	write("medz_counts", func(w io.Writer) error { return writeCountsMatrix(w, counts) })
	write("medz_zscores", func(w io.Writer) error { return writeZMatrix(w, zscores) })
	write("medz_picked_top", func(w io.Writer) error { return writePicks(w, burden.Picks) })
	write("medz_picked_counts", func(w io.Writer) error { return writePickCounts(w, burden.PickCounts) })
	write("medz_picked", func(w io.Writer) error { return writePicks(w, filtered) })
	write("individuals_filtered", func(w io.Writer) error { return writeIDList(w, burden.Surviving) })
	write("wgs_eur_filtered", func(w io.Writer) error { return writeIDList(w, IntersectIDs(wgsEUR, surviving)) })
	write("wgs_all_filtered", func(w io.Writer) error { return writeIDList(w, IntersectIDs(wgsAll, surviving)) })
	if paths.numpy {
		writeNpy("medz_counts", func(w io.Writer) error { return writeNumpyInt32(w, counts) })
		writeNpy("medz_zscores", func(w io.Writer) error { return writeNumpyFloat64(w, zscores) })
		write("medz_rows", func(w io.Writer) error { return writeIDList(w, counts.Genes) })
		write("medz_cols", func(w io.Writer) error { return writeIDList(w, counts.Samples) })
	}
	return out.Wait()
}
