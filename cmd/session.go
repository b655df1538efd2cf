package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/sprintdeck/internal/storage"
)

// SessionNew prints a fresh session ID to use with SPRINTDECK_SESSION
func SessionNew() {
	id := storage.NewSessionID()
	fmt.Println(id)
	fmt.Fprintf(os.Stderr, "Use it with: export SPRINTDECK_SESSION=%s\n", id)
}

// SessionList lists the sessions stored in the database
func SessionList() {
	s := OpenSessionOrExit()
	defer s.Close()

	db := s.Bolt()
	if db == nil {
		fmt.Println("Store is ephemeral, no sessions persisted")
		return
	}

	ids, err := db.Sessions()
	if err != nil {
		HandleError(err)
	}
	for _, id := range ids {
		marker := " "
		if id == db.SessionID() {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, id)
	}
}
