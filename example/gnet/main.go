// FILE: lixenwraith/logship/example/gnet/main.go
package main

import (
	"os"

	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/compat"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
	logger *logship.Logger
}

func (es *echoServer) OnBoot(eng gnet.Engine) gnet.Action {
	es.logger.Info("echo server started", logship.Fields{"addr": "tcp://127.0.0.1:9000"})
	return gnet.None
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	es.logger.Debug("echo", logship.Fields{"remote": c.RemoteAddr().String(), "bytes": len(buf)})
	_, _ = c.Write(buf)
	return gnet.None
}

func main() {
	tasks, err := logship.NewTaskGroup(16)
	if err != nil {
		panic(err)
	}

	cfg := logship.DefaultConfig()
	err = cfg.ApplyOverride(
		"api_key="+os.Getenv("BASELIME_API_KEY"),
		"dataset=gnet",
		"service=echo",
		"flush_after_ms=2000",
	)
	if err != nil {
		panic(err)
	}

	// Structured adapter lifts "key=%v" pairs of gnet's messages into fields
	builder := compat.NewBuilder().
		WithConfig(cfg).
		WithOptions(logship.WithBackground(tasks))
	gnetAdapter, err := builder.BuildStructuredGnet()
	if err != nil {
		panic(err)
	}
	logger, _ := builder.GetLogger()
	defer logger.Shutdown()

	// Configure gnet server with the logger
	err = gnet.Run(
		&echoServer{logger: logger},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
