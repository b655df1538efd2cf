package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/illarion/sprintdeck/internal/crypto"
	"golang.org/x/term"
)

var stdin = bufio.NewReader(os.Stdin)

// ReadSecret reads a secret from the terminal without echoing
func ReadSecret(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	// Read secret without echo
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after secret

	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	return secret, nil
}

// ReadSecretConfirm reads a secret twice and ensures they match
func ReadSecretConfirm(prompt string) ([]byte, error) {
	secret1, err := ReadSecret(prompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(secret1)

	secret2, err := ReadSecret("Confirm: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(secret2)

	if !crypto.ConstantTimeCompare(secret1, secret2) {
		return nil, fmt.Errorf("entries do not match")
	}

	// Return a copy of the secret
	result := make([]byte, len(secret1))
	copy(result, secret1)
	return result, nil
}

// ReadLine prints prompt and reads one line of plain input.
// An empty answer returns def.
func ReadLine(prompt, def string) (string, error) {
	return readLine(stdin, prompt, def)
}

func readLine(r *bufio.Reader, prompt, def string) (string, error) {
	if def != "" {
		fmt.Printf("%s [%s]: ", prompt, def)
	} else {
		fmt.Printf("%s: ", prompt)
	}

	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}
