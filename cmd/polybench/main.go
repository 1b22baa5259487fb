// Command polybench runs the measurement pipeline's CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jpequegn/polybench/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
