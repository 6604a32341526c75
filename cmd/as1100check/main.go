// Command as1100check validates engineering drawings against the AS 1100
// compliance rubric and gates automatically extracted drawing parameters.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errRejected) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
