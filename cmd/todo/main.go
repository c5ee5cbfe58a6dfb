package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tomlord1122/todo-tracker/internal/cli"
	"github.com/Tomlord1122/todo-tracker/internal/client"
)

func main() {
	defaultAPI := os.Getenv("TODO_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	apiURL := flag.String("api", defaultAPI, "todo API base URL (env TODO_API_URL)")
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	creds, err := client.DefaultCredentials()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, flag.Args(), cli.Options{
		APIURL:      *apiURL,
		Credentials: creds,
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
	})
	stop()
	os.Exit(code)
}
