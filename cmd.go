// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package medz calls per-gene, per-individual expression outliers from a
// normalized multi-tissue expression matrix, using the median across
// tissues of each individual's per-tissue Z-scores.
package medz

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

func Main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logrus.StandardLogger().Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	}
	os.Exit((&callOutliers{}).RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
