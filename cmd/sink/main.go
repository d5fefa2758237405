// FILE: lixenwraith/logship/cmd/sink/main.go
// Command sink is a local stand-in for the ingestion endpoint. It accepts
// batch POSTs, prints the records and can reject a share of them to exercise
// retention on the client side.
package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/formatter"
)

type sinkServer struct {
	apiKey   string
	failRate float64
	quiet    bool
	fmt      *formatter.Formatter

	batches  atomic.Int64
	records  atomic.Int64
	rejected atomic.Int64
}

func (s *sinkServer) handle(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	path := strings.Trim(string(ctx.Path()), "/")
	segments := strings.Split(path, "/")
	dataset := segments[len(segments)-1]
	if dataset == "" {
		ctx.Error("missing dataset", fasthttp.StatusNotFound)
		return
	}

	key := string(ctx.Request.Header.Peek("x-api-key"))
	if key == "" || (s.apiKey != "" && key != s.apiKey) {
		ctx.Error("invalid api key", fasthttp.StatusUnauthorized)
		return
	}

	if s.failRate > 0 && rand.Float64() < s.failRate {
		s.rejected.Add(1)
		ctx.Error("injected failure", fasthttp.StatusServiceUnavailable)
		return
	}

	body := ctx.Request.Body()
	if bytes.Equal(ctx.Request.Header.ContentEncoding(), []byte("gzip")) {
		var err error
		if body, err = ctx.Request.BodyGunzip(); err != nil {
			ctx.Error("invalid gzip body: "+err.Error(), fasthttp.StatusBadRequest)
			return
		}
	}

	records, err := logship.DecodeBatch(body)
	if err != nil {
		ctx.Error("invalid batch: "+err.Error(), fasthttp.StatusBadRequest)
		return
	}

	s.batches.Add(1)
	s.records.Add(int64(len(records)))

	if !s.quiet {
		service := string(ctx.Request.Header.Peek("x-service"))
		namespace := string(ctx.Request.Header.Peek("x-namespace"))
		fmt.Printf("batch of %d records for %s (service=%q namespace=%q)\n", len(records), dataset, service, namespace)
		for _, r := range records {
			_, _ = os.Stdout.Write(s.fmt.Console(r.Level, r.RequestID, r.Message, r.Fields))
		}
	}

	ctx.SetStatusCode(fasthttp.StatusAccepted)
}

func main() {
	var (
		addr     string
		apiKey   string
		failRate float64
		quiet    bool
		color    bool
	)

	flagSet := pflag.NewFlagSet("sink", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "127.0.0.1:8090", "listen address")
	flagSet.StringVar(&apiKey, "api-key", "", "accept only this api key (default: any non-empty key)")
	flagSet.Float64Var(&failRate, "fail-rate", 0, "share of batches rejected with 503, between 0 and 1")
	flagSet.BoolVarP(&quiet, "quiet", "q", false, "count batches without printing records")
	flagSet.BoolVar(&color, "color", true, "colorize printed records")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "sink: %v\n", err)
		os.Exit(2)
	}
	if failRate < 0 || failRate > 1 {
		fmt.Fprintf(os.Stderr, "sink: --fail-rate must be between 0 and 1\n")
		os.Exit(2)
	}

	s := &sinkServer{
		apiKey:   apiKey,
		failRate: failRate,
		quiet:    quiet,
		fmt:      formatter.New().Color(color),
	}

	// fasthttp handlers run concurrently, the shared formatter is not safe for that
	handler := fasthttp.RequestHandler(s.handle)
	if !quiet {
		handler = serialize(s.handle)
	}

	server := &fasthttp.Server{
		Handler:            handler,
		Name:               "logship-sink",
		MaxRequestBodySize: 16 << 20,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		_ = server.Shutdown()
	}()

	fmt.Printf("sink listening on http://%s (POST /v1/{dataset})\n", addr)
	if err := server.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "sink: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("received %d batches, %d records, rejected %d batches\n",
		s.batches.Load(), s.records.Load(), s.rejected.Load())
}

// serialize runs one handler invocation at a time
func serialize(h fasthttp.RequestHandler) fasthttp.RequestHandler {
	sem := make(chan struct{}, 1)
	return func(ctx *fasthttp.RequestCtx) {
		sem <- struct{}{}
		defer func() { <-sem }()
		h(ctx)
	}
}
