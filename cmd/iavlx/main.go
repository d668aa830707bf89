package main

import (
	"os"
)

func main() {
	if err := execute(newEnv(), os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}
