package main

import (
	"fmt"
	"os"

	"github.com/hogent/event-ticket-manager/cmd/ticketapi/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
