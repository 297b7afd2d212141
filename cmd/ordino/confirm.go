package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ordinoproj/ordino/pkg/protocol"
)

// newConfirmer builds the fix-offer prompt. With --yes every offer is
// accepted without asking.
func newConfirmer(assumeYes bool) protocol.Confirmer {
	if assumeYes {
		return func(context.Context, string) (bool, error) {
			return true, nil
		}
	}

	reader := bufio.NewReader(os.Stdin)

	return func(_ context.Context, question string) (bool, error) {
		fmt.Printf("%s [y/N]: ", question)

		answer, err := reader.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("failed to read confirmation: %w", err)
		}

		answer = strings.ToLower(strings.TrimSpace(answer))

		return answer == "y" || answer == "yes", nil
	}
}
