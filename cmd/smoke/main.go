package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"admin-e2e/internal/di"
	"admin-e2e/internal/domain/entity"
	"admin-e2e/internal/fixture/dashboard"
	"admin-e2e/internal/infrastructure/console"
	"admin-e2e/internal/infrastructure/env"
	"admin-e2e/internal/infrastructure/fixtures"
	"admin-e2e/internal/infrastructure/logger"

	"github.com/google/uuid"
)

func main() {
	runLog, err := logger.NewLoggerAdapter("smoke")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}

	report := console.NewReporter(os.Stdout)
	report.ShowBanner("admin dashboard smoke run")

	err = run(runLog, report)
	failed := report.ShowSummary()
	runLog.Close()

	if err != nil || failed > 0 {
		if err != nil {
			fmt.Printf("\nSmoke run failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(runLog *logger.LoggerAdapter, report *console.Reporter) error {
	envService := env.NewEnvService(".", runLog)
	cfg, err := di.ConfigFromEnv(envService)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.Logger = runLog

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if cfg.BaseURL == "" {
		report.ShowStepStart("dashboard", "ADMIN_BASE_URL is empty, serving the built-in dashboard")
		stop, baseURL, err := startDashboard(cfg.Credentials)
		report.ShowStepResult(baseURL, err)
		if err != nil {
			return err
		}
		defer stop()
		cfg.BaseURL = baseURL
		runLog.Info("serving built-in dashboard", "url", baseURL)
	}

	set, err := fixtures.Load(cfg.ToolsFixture)
	if err != nil {
		return err
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer container.Close()

	report.ShowStepStart("setup", cfg.Credentials.Username+" @ "+cfg.BaseURL)
	err = container.Tools.Setup(ctx)
	report.ShowStepResult("tools tab open", err)
	if err != nil {
		return err
	}

	suffix := uuid.NewString()[:8]
	var created []string
	for _, key := range set.Keys() {
		base, _ := set.Get(key)
		tool, err := set.Renamed(key, fmt.Sprintf("%s-%s", base.Name(), suffix))
		if err != nil {
			return err
		}

		report.ShowStepStart("create", tool.Name())
		err = container.Admin.CreateTool(ctx, tool)
		report.ShowStepResult(fmt.Sprintf("%d fields submitted", len(tool.Fields)), err)
		if err != nil {
			return err
		}
		created = append(created, tool.Name())

		report.ShowStepStart("find", tool.Name())
		rows, err := container.Browser.Count(ctx, container.Admin.ToolByName(tool.Name()))
		if err == nil && rows != 1 {
			err = fmt.Errorf("expected one row for %s, found %d", tool.Name(), rows)
		}
		report.ShowStepResult(fmt.Sprintf("rows=%d", rows), err)
	}

	const echoText = "hello from smoke"
	params := entity.Params("text", echoText)
	payload, _ := params.JSON()
	report.ShowStepStart("execute", "Echo "+payload)
	out, err := container.Tools.ExecuteTool(ctx, "Echo", params)
	report.ShowStepResult(fmt.Sprintf("result %q", out), checkEcho(echoText, out, err))

	var errs []error
	for _, name := range created {
		report.ShowStepStart("delete", name)
		derr := container.Admin.DeleteTool(ctx, name)
		report.ShowStepResult("deleted", derr)
		if derr != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", name, derr))
		}
	}
	return errors.Join(errs...)
}

// checkEcho fails the step when Echo did not hand back what it was sent.
func checkEcho(sent, got string, err error) error {
	if err != nil {
		return err
	}
	if got != sent {
		return fmt.Errorf("echo mismatch: sent %q, got %q", sent, got)
	}
	return nil
}

func startDashboard(creds entity.Credentials) (func(), string, error) {
	cfg := dashboard.DefaultConfig()
	cfg.Credentials = creds
	srv := dashboard.New(cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", err
	}
	httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = httpSrv.Serve(ln)
	}()

	stop := func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	}
	return stop, "http://" + ln.Addr().String(), nil
}
