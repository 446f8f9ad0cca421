package main

import (
	"context"
	"fmt"
	"os"

	"classifyd/internal/cli"
)

func main() {
	root := cli.NewRootCmd(cli.Deps{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
