// Command renderplan plans render jobs for CUE fixtures.
package main

import (
	"os"

	"github.com/roach88/renderplan/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
