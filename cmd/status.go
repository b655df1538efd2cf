package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/illarion/sprintdeck/internal/git"
)

// Status shows what the session holds without contacting the tracker
func Status(ctx context.Context) {
	s := OpenSessionOrExit()
	defer s.Close()

	// Describe first: Load purges expired items
	items := s.Vault.Describe()
	st := s.State.Load(ctx)

	if db := s.Bolt(); db != nil {
		fmt.Printf("Store:    %s (session %s)\n", db.Path(), db.SessionID())
		if gs, err := git.CheckStore(s.Config.Store.Path); err == nil {
			fmt.Print(git.FormatStoreStatus(gs))
		}
	} else {
		fmt.Println("Store:    in-memory (ephemeral)")
	}
	fmt.Printf("Timeout:  %s\n", formatAge(s.Vault.SessionTimeout()))
	fmt.Println()

	if !st.Configured() {
		fmt.Println("Credentials: not configured, run 'sprintdeck login'")
	} else {
		fmt.Println("Credentials:")
		fmt.Printf("  Project:  %s\n", st.ProjectName)
		fmt.Printf("  Domain:   %s\n", st.Domain)
		fmt.Printf("  Email:    %s\n", st.Email)
		fmt.Printf("  Token:    %s\n", maskToken(st.APIToken))
	}
	if st.SelectedProject != nil {
		fmt.Printf("  Selected: %s (%s)\n", st.SelectedProject.Name, st.SelectedProject.Key)
	}

	fmt.Println()
	fmt.Println("Items:")
	if len(items) == 0 {
		fmt.Println("  (none)")
		return
	}
	now := time.Now()
	for _, item := range items {
		switch {
		case item.Corrupt:
			fmt.Printf("  ! %s (corrupted)\n", item.Key)
		case item.Expired:
			fmt.Printf("  x %s (expired)\n", item.Key)
		default:
			mode := "plain"
			if item.Encrypted {
				mode = "encrypted"
			}
			fmt.Printf("  * %s (%s, stored %s ago, expires in %s)\n",
				item.Key, mode, formatAge(now.Sub(item.StoredAt)), formatAge(item.Deadline.Sub(now)))
		}
	}
}
