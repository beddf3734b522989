package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// An interrupt surfaces as context.Canceled and needs no message.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "moodcue:", err)
		}
		os.Exit(1)
	}
}
