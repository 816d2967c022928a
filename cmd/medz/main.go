// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/outlier-lab/medz"

func main() {
	medz.Main()
}
