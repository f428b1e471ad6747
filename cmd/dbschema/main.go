package main

import (
	"context"
	"github.com/Maksumys/dbschema/internal/config"
	"github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = newRootCommand(env).ExecuteContext(ctx)
	stop()

	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
