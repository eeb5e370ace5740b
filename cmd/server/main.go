package main

import (
	"fxcache/internal/app"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Error("service stopped")
		os.Exit(1)
	}
}
