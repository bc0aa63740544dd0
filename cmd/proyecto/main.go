package main

import (
	"fmt"
	"os"

	"github.com/jesuschaires594-droid/proyecto/cmd/proyecto/commands"
)

func main() {
	rootCmd := commands.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
