// Package all registers every subcommand.
package all

import (
	_ "github.com/synthscan/synthscan/cmd/detect"
	_ "github.com/synthscan/synthscan/cmd/serve"
)
