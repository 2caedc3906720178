// Package main is the entry point for the gatekeeper service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/gatekeeper/cmd/gatekeeper/app"
)

func main() {
	app.NewApp().Run()
}
