package cmd

import (
	"context"
	"fmt"
	"os"
)

// Compact rewrites the session database to reclaim space left by dropped
// sessions and removed items
func Compact(_ context.Context) {
	s := OpenSessionOrExit()
	defer s.Close()

	db := s.Bolt()
	if db == nil {
		fmt.Println("Nothing to compact: store is ephemeral")
		return
	}

	info, err := os.Stat(db.Path())
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := db.Compact(); err != nil {
		HandleError(err)
	}

	info, err = os.Stat(db.Path())
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
