package main

import (
	"os"

	"github.com/dmitrijs2005/authgate/internal/authctl"
)

func main() {
	os.Exit(authctl.New().Run(os.Args[1:]))
}
