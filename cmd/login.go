package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/sprintdeck/internal/config"
	"github.com/illarion/sprintdeck/internal/crypto"
	"github.com/illarion/sprintdeck/internal/git"
	"github.com/illarion/sprintdeck/internal/prompt"
	"github.com/illarion/sprintdeck/internal/vault"
)

// Login prompts for tracker credentials and stores them in the session
func Login(ctx context.Context, verify bool) {
	s := OpenSessionOrExit()
	defer s.Close()

	current := s.State.Load(ctx)

	domainDefault := current.Domain
	if domainDefault == "" {
		domainDefault = s.Config.Tracker.Domain
	}

	projectName, err := prompt.ReadLine("Project name", current.ProjectName)
	if err != nil {
		HandleError(err)
	}
	domain, err := prompt.ReadLine("Tracker URL (https://<site>.atlassian.net)", domainDefault)
	if err != nil {
		HandleError(err)
	}
	domain = strings.TrimRight(domain, "/")
	if err := config.ValidateDomain(domain); err != nil {
		HandleError(err)
	}
	email, err := prompt.ReadLine("Email", current.Email)
	if err != nil {
		HandleError(err)
	}

	token, err := prompt.ReadSecret("API token: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(token)
	if len(token) == 0 {
		if current.APIToken == "" {
			fmt.Fprintln(os.Stderr, "Error: API token must not be empty")
			os.Exit(1)
		}
		token = []byte(current.APIToken)
	}

	creds := vault.Credentials{
		ProjectName: projectName,
		Domain:      domain,
		Email:       email,
		APIToken:    string(token),
	}
	if !creds.Configured() {
		fmt.Fprintln(os.Stderr, "Error: tracker URL, email and API token are all required")
		os.Exit(1)
	}

	if err := s.State.SaveCredentials(ctx, creds); err != nil {
		HandleError(err)
	}
	fmt.Printf("Credentials saved (expire in %s)\n", formatAge(s.Vault.SessionTimeout()))
	if s.Bolt() != nil {
		if gs, err := git.CheckStore(s.Config.Store.Path); err == nil && !gs.Safe() {
			fmt.Print(git.FormatStoreStatus(gs))
		}
	}

	if !verify {
		return
	}
	client, _, err := s.Client(ctx)
	if err != nil {
		HandleError(err)
	}
	projects, err := client.Projects(ctx)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Verified: %d project(s) visible\n", len(projects))
}

// Logout forgets the stored credentials. With all set, the whole session
// is dropped.
func Logout(_ context.Context, all bool) {
	s := OpenSessionOrExit()
	defer s.Close()

	if !all {
		s.Vault.ClearCredentials()
		fmt.Println("Credentials removed")
		return
	}

	if db := s.Bolt(); db != nil {
		if err := db.DropSession(); err != nil {
			HandleError(fmt.Errorf("failed to drop session %s: %w", db.SessionID(), err))
		}
	} else {
		s.Vault.Clear()
	}
	fmt.Println("Session cleared")
}
