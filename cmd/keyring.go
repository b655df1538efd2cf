package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/sprintdeck/internal/config"
	"github.com/illarion/sprintdeck/internal/crypto"
	"github.com/illarion/sprintdeck/internal/keyring"
	"github.com/illarion/sprintdeck/internal/prompt"
)

func loadConfigOrExit() config.Config {
	cfg, err := config.Load()
	if err != nil {
		HandleError(err)
	}
	return cfg
}

// KeyringSave stores the encryption passphrase in the OS keyring.
// Items written under another passphrase become unreadable and are purged
// on their next read.
func KeyringSave() {
	cfg := loadConfigOrExit()

	passphrase, err := prompt.ReadSecretConfirm("Encryption passphrase: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(passphrase)

	if len(passphrase) == 0 {
		fmt.Fprintln(os.Stderr, "Error: passphrase must not be empty")
		os.Exit(1)
	}

	if err := keyring.SavePassphrase(cfg.Store.Path, string(passphrase)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Passphrase saved to keyring")
	if cfg.Vault.Passphrase != "" {
		fmt.Println("Note: SPRINTDECK_ENCRYPTION_KEY is set and takes precedence")
	}
}

// KeyringDelete removes the passphrase from the OS keyring
func KeyringDelete() {
	cfg := loadConfigOrExit()

	if err := keyring.DeletePassphrase(cfg.Store.Path); err != nil {
		fmt.Println("No passphrase stored in keyring")
		return
	}

	fmt.Println("Passphrase removed from keyring")
}

// KeyringStatus reports where the encryption passphrase comes from
func KeyringStatus() {
	cfg := loadConfigOrExit()

	switch {
	case cfg.Vault.Passphrase != "":
		fmt.Println("Passphrase: from environment or config file")
	case keyring.HasPassphrase(cfg.Store.Path):
		fmt.Println("Passphrase: stored in keyring")
	default:
		fmt.Println("Passphrase: built-in default (set one with 'sprintdeck keyring save')")
	}
}
