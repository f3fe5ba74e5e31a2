package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"souk-inventory/internal/adapters/cli"
	"souk-inventory/internal/app"
)

var errExit = errors.New("exit")

// Run starts the interactive loop. Each line is a CLI command, with or without
// a leading slash; /new-order starts a guided order entry. Returns when the
// user exits or reader is exhausted.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) error {
	if err := printBanner(ctx, svc, out); err != nil {
		return err
	}

	dispatch := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		switch strings.ToLower(tokens[0]) {
		case "help", "h":
			printHelp(out)
		case "exit", "quit", "e", "q":
			return errExit
		case "new-order":
			handleNewOrder(ctx, reader, svc, out)
		default:
			return cli.Run(ctx, svc, tokens, out)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			if err := dispatch(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return readErr
		}
	}
}
