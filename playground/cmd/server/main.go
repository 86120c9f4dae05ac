package main

import (
	"github.com/kyori-mfv/mfext/pkg/cli"

	"playground/app"
)

func main() {
	cli.Serve(app.Components)
}
