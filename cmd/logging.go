package cmd

import (
	"github.com/urfave/cli"

	"github.com/cloudmarch/sky/pkg/log"
)

var logger = log.New("cloudmarch")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
