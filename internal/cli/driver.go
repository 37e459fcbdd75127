// Package cli implements the interactive console front-end: a fixed batch of
// demonstration sentences followed by a read-correct-print loop.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// CorrectionService is the slice of the corrector the driver needs.
type CorrectionService interface {
	Correct(ctx context.Context, text string) (string, error)
}

// exampleSentences cover common German error classes: capitalization,
// subject-verb agreement, case, umlauts and gender.
var exampleSentences = []string{
	"Ich habe gestern ein Buch gekauft.",
	"Ich habe gestern ein buch gekauft.",
	"Die Kinder spielt im Garten.",
	"Ich bin nach Berlin gefahren und habe mein Freund besucht.",
	"Wir mussen heute nach Hause gehen.",
	"Ich habe kein zeit für das.",
}

// Run prints the example batch, then enters interactive mode until the user
// types "exit" (case-insensitive) or in reaches EOF.
func Run(ctx context.Context, c CorrectionService, modelName string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Model: %s\n", modelName)
	fmt.Fprintln(out, "Starting German grammar correction examples...")

	for idx, sentence := range exampleSentences {
		fmt.Fprintf(out, "\nExample %d:\n", idx+1)
		fmt.Fprintf(out, "Original: %s\n", sentence)

		corrected, err := c.Correct(ctx, sentence)
		if err != nil {
			return fmt.Errorf("correcting example %d: %w", idx+1, err)
		}
		fmt.Fprintf(out, "Corrected: %s\n", corrected)

		if sentence != corrected {
			fmt.Fprintln(out, "Changes were made ✓")
		} else {
			fmt.Fprintln(out, "No changes needed ✓")
		}
	}

	fmt.Fprint(out, "\n\n--- Interactive Mode ---\n")
	fmt.Fprintln(out, "Enter German sentences for correction (type 'exit' to quit):")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYour German text: ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.EqualFold(line, "exit") {
			break
		}

		corrected, err := c.Correct(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Corrected: %s\n", corrected)
	}
	return scanner.Err()
}
