package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof" // register handlers
	"regexp"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zephyrtronium/a2/command"
)

func (robo *Robot) api(ctx context.Context, listen string, mux *http.ServeMux, metrics []prometheus.Collector) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(
		collectors.WithGoCollectorMemStatsMetricsDisabled(),
		collectors.WithGoCollectorRuntimeMetrics(
			collectors.GoRuntimeMetricsRule{
				Matcher: regexp.MustCompile(`^(/gc/gogc:percent|/gc/gomemlimit:bytes|/gc/heap/allocs:bytes|/gc/heap/goal:bytes|/memory/classes/total:bytes|/sched/gomaxprocs:threads|/sched/goroutines:goroutines|/sched/latencies:seconds)$`),
			},
		),
	))
	reg.MustRegister(metrics...)
	robo.routes(mux, reg)
	l, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("couldn't start API server: %w", err)
	}
	srv := http.Server{
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	go func() {
		slog.InfoContext(ctx, "HTTP API server", slog.Any("addr", l.Addr()))
		err := srv.Serve(l)
		if err == http.ErrServerClosed {
			return
		}
		slog.ErrorContext(ctx, "HTTP API server closed", slog.Any("err", err))
	}()
	<-ctx.Done()
	// The context is now done, so it is obviously the wrong choice for
	// managing the shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// routes installs the API handlers.
func (robo *Robot) routes(mux *http.ServeMux, reg *prometheus.Registry) {
	opts := promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, opts))
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("GET /api/plugins", robo.apiPlugins)
	mux.HandleFunc("GET /api/plugins/{name}", robo.apiPlugin)
}

func jsonerror(w http.ResponseWriter, status int, msg string) {
	v := struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{
		Error:  msg,
		Status: status,
	}
	b, err := json.Marshal(&v)
	if err != nil {
		panic(err)
	}
	w.WriteHeader(status)
	w.Write(b)
}

type apiPlugin struct {
	Name     string       `json:"name"`
	Commands []apiCommand `json:"commands"`
}

type apiCommand struct {
	Name  string `json:"name"`
	Usage string `json:"usage"`
	Help  string `json:"help,omitzero"`
}

func (robo *Robot) apiPlugins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slog.With(slog.String("api", "plugins"), slog.Any("trace", uuid.New()))
	log.InfoContext(ctx, "handle", slog.String("route", r.Pattern), slog.String("remote", r.RemoteAddr))
	defer log.InfoContext(ctx, "done")
	w.Header().Set("Content-Type", "application/json")
	u := struct {
		Data   []apiPlugin `json:"data"`
		Status int         `json:"status"`
	}{
		Data:   []apiPlugin{},
		Status: http.StatusOK,
	}
	for _, p := range robo.robo.Plugins.Plugins() {
		u.Data = append(u.Data, robo.describe(p))
	}
	b, err := json.Marshal(&u)
	if err != nil {
		panic(err)
	}
	if _, err := w.Write(b); err != nil {
		log.ErrorContext(ctx, "write response failed", slog.Any("err", err))
	}
}

func (robo *Robot) apiPlugin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slog.With(slog.String("api", "plugin"), slog.Any("trace", uuid.New()))
	log.InfoContext(ctx, "handle", slog.String("route", r.Pattern), slog.String("remote", r.RemoteAddr))
	defer log.InfoContext(ctx, "done")
	w.Header().Set("Content-Type", "application/json")
	name := r.PathValue("name")
	for _, p := range robo.robo.Plugins.Plugins() {
		if !strings.EqualFold(p.Name(), name) {
			continue
		}
		u := struct {
			Data   apiPlugin `json:"data"`
			Status int       `json:"status"`
		}{
			Data:   robo.describe(p),
			Status: http.StatusOK,
		}
		b, err := json.Marshal(&u)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(b); err != nil {
			log.ErrorContext(ctx, "write response failed", slog.Any("err", err))
		}
		return
	}
	log.WarnContext(ctx, "no such plugin", slog.String("name", name))
	jsonerror(w, http.StatusNotFound, "no such plugin")
}

func (robo *Robot) describe(p command.Plugin) apiPlugin {
	cmds := p.Commands()
	v := apiPlugin{Name: p.Name(), Commands: make([]apiCommand, len(cmds))}
	for i := range cmds {
		c := &cmds[i]
		v.Commands[i] = apiCommand{Name: c.Name, Usage: robo.prefix + command.Usage(c), Help: c.Help}
	}
	return v
}
