package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"cwa-dashboard/config"
	"cwa-dashboard/internal/explore"
	"cwa-dashboard/internal/repositories"
	"cwa-dashboard/pkg/logger"
)

func main() {
	file := flag.String("file", "", "read the forecast document from this file instead of the CWA API")
	flag.Parse()

	if err := run(*file, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "explore: %v\n", err)
		os.Exit(1)
	}
}

func run(file string, w io.Writer) error {
	body, err := load(file)
	if err != nil {
		return err
	}
	return explore.Run(w, body)
}

func load(file string) ([]byte, error) {
	if file != "" {
		return os.ReadFile(file)
	}

	cnf, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	l := logger.NewZapLogger("cwa-explore", []io.Writer{os.Stderr}, logger.WithLevel(cnf.Log.Level))
	defer l.Stop()

	repo, err := repositories.NewCWARepository(cnf.CWA.APIKey, repositories.CWAOptions{
		BaseURL: cnf.CWA.BaseURL,
		Dataset: cnf.CWA.Dataset,
	}, l, &http.Client{Timeout: cnf.CWA.Timeout})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cnf.CWA.Timeout+5*time.Second)
	defer cancel()

	return repo.FetchRaw(ctx)
}
