package prune

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// PromptConfirmer reads the answer from a line of input. Only "Y" or "yes"
// (any case) counts as consent.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements Confirmer.
func (c PromptConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintln(c.Out, prompt)
	fmt.Fprint(c.Out, "\nPlease type Y for yes, and N for no : ")

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, err
	}
	answer := strings.TrimSpace(line)
	fmt.Fprintf(c.Out, "\nYou typed: %s\n\n", answer)

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Always answers every question with a fixed value.
type Always bool

// Confirm implements Confirmer.
func (a Always) Confirm(string) (bool, error) {
	return bool(a), nil
}
