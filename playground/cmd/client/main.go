//go:build js && wasm

package main

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/client"
	"github.com/kyori-mfv/mfext/pkg/client/browser"
	"github.com/kyori-mfv/mfext/playground/app"
)

func main() {
	components := client.NewComponents()
	components.Register("counter", app.MountCounter)
	if err := browser.Run(context.Background(), components); err != nil {
		panic(err)
	}
}
