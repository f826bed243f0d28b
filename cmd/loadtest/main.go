// Command loadtest fires concurrent depot appends at a running cluster and
// reports throughput, together with how the client spread the load across
// the advertised supervisors.
//
// Configuration via environment:
//
//	CONDUCTOR  conductor URL          (default: RAMA_CONDUCTOR_URL or local)
//	MODULE     module name            (default: com.example/wordcount)
//	DEPOT      depot name             (default: *words-depot)
//	N          number of appends      (default: 10000)
//	C          concurrent workers     (default: 16)
//	ACK        ack level              (default: appendAck)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tommy-mor/rama-go/core/rama"
)

var (
	conductor = getEnv("CONDUCTOR", rama.ConductorFromEnv())
	module    = getEnv("MODULE", "com.example/wordcount")
	depotName = getEnv("DEPOT", "*words-depot")
	n         = getEnvInt("N", 10_000)
	workers   = getEnvInt("C", 16)
	ackLevel  = rama.AckLevel(getEnv("ACK", string(rama.AckLevelAppendAck)))
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	client, err := rama.NewClient(rama.ClientOptions{ConductorURL: conductor, Log: log})
	if err != nil {
		log.Error("create client", slog.Any("error", err))
		os.Exit(1)
	}

	depot := client.Module(module).Depot(depotName)
	log.Info("starting load",
		slog.String("conductor", conductor),
		slog.String("module", module),
		slog.String("depot", depotName),
		slog.Int("appends", n),
		slog.Int("workers", workers),
	)

	var done atomic.Int64
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := depot.Append(ctx, fmt.Sprintf("word-%d", i), rama.WithAckLevel(ackLevel))
			if err != nil {
				return err
			}
			done.Add(1)
			return nil
		})
	}

	err = g.Wait()
	elapsed := time.Since(start)

	if err != nil {
		log.Error("load aborted", slog.Any("error", err), slog.Int64("completed", done.Load()))
		os.Exit(1)
	}

	supervisors := 0
	if eps, ok := client.Topology().Lookup(module); ok {
		supervisors = len(eps)
	}

	log.Info("done",
		slog.Int64("appends", done.Load()),
		slog.Duration("elapsed", elapsed),
		slog.Float64("per_second", float64(done.Load())/elapsed.Seconds()),
		slog.Int("supervisors", supervisors),
	)
}
