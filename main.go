package main

import (
	"github.com/synthscan/synthscan/cmd"
	_ "github.com/synthscan/synthscan/cmd/all"
)

func main() {
	cmd.Execute()
}
