package cmd

import (
	"context"
	"fmt"
	"sort"
)

// Sweep removes expired and corrupted items from the session
func Sweep(ctx context.Context, verbose bool) {
	s := OpenSessionOrExit()
	defer s.Close()

	removed := s.Swept + s.Vault.Cleanup(ctx)
	if removed == 0 {
		fmt.Println("Nothing to remove")
	} else {
		fmt.Printf("Removed %d item(s)\n", removed)
	}

	if !verbose {
		return
	}
	values, err := counterValues(s.Registry)
	if err != nil {
		HandleError(err)
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s %g\n", name, values[name])
	}
}
