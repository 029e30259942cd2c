package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

var errNoTerminal = errors.New("standard input is not a terminal")

// promptPassword reads a line from the terminal without echoing it.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errNoTerminal
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// GetPassPhrase displays the given text(prompt) to the user and requests some
// textual data to be entered, but one which must not be echoed out into the
// terminal. The method returns the input provided by the user.
func GetPassPhrase(text string, confirmation bool) string {
	if text != "" {
		fmt.Fprintln(os.Stderr, text)
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		Fatalf("Failed to read password: %v", err)
	}
	if confirmation {
		confirm, err := promptPassword("Repeat password: ")
		if err != nil {
			Fatalf("Failed to read password confirmation: %v", err)
		}
		if password != confirm {
			Fatalf("Passwords do not match")
		}
	}
	return password
}

// GetPassPhraseWithList retrieves the password associated with a key, either
// fetched from a list of preloaded passwords, or requested interactively
// from the user.
func GetPassPhraseWithList(text string, confirmation bool, index int, passwords []string) string {
	// If a list of passwords was supplied, retrieve from them
	if len(passwords) > 0 {
		if index < len(passwords) {
			return passwords[index]
		}
		return passwords[len(passwords)-1]
	}
	// Otherwise prompt the user for the password
	return GetPassPhrase(text, confirmation)
}

// ReadSecretFile returns the first line of the file, without surrounding
// white space.
func ReadSecretFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	lines := strings.Split(string(raw), "\n")
	return strings.TrimSpace(lines[0]), nil
}

// GetRecoveryPhrase loads the phrase from file when a path is given and
// prompts for it otherwise.
func GetRecoveryPhrase(path string) (string, error) {
	if path != "" {
		return ReadSecretFile(path)
	}
	phrase, err := promptPassword("Recovery phrase: ")
	if err != nil {
		return "", fmt.Errorf("failed to read recovery phrase: %w", err)
	}
	return phrase, nil
}
