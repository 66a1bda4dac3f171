// spraydex - Spray paint catalog browser and colour matcher
//
// spraydex indexes spray paint catalogs and finds the catalog colours that
// look closest to hex colours or to the swatches of an analysed image.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"github.com/jmylchreest/spraydex/internal/cli"
)

func main() {
	cli.Execute()
}
