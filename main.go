package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatapp-client/internal/cache"
	"chatapp-client/internal/config"
	"chatapp-client/internal/gateway"
	"chatapp-client/internal/reducer"
	"chatapp-client/internal/rest"
	"chatapp-client/internal/session"
	"chatapp-client/internal/window"

	"go.uber.org/zap"
)

func setupLogger(level string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"app.log", "stdout"}

	parsedLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = parsedLevel

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	sugar := logger.Sugar()
	defer logger.Sync()

	return sugar, nil
}

func main() {
	fmt.Println("Reading config...")
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Setting up logger...")
	sugar, err := setupLogger(cfg.LogLevel)
	if err != nil {
		fmt.Println(err)
		return
	}

	claims, err := session.Parse(cfg.SessionToken)
	if err != nil {
		sugar.Fatal(err)
	}
	sugar.Debugf("Session belongs to user ID [%s]", claims.UserID)

	api := rest.NewClient(sugar, cfg.APIBaseURL, cfg.SessionToken)

	windows := window.New(sugar, api, cfg.RowHeight)
	entityCache := cache.New(sugar, windows, claims.UserID)
	windows.Bind(entityCache)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Fetching initial state...")
	setup, apiErr := api.Setup(ctx)
	if apiErr != nil {
		sugar.Fatal(apiErr)
	}

	for _, server := range setup.Servers {
		entityCache.AddServer(server)
	}
	entityCache.SetFriends(setup.Friends)

	red := reducer.New(sugar, entityCache, windows)

	fmt.Println("Connecting to gateway...")
	gw, err := gateway.Dial(ctx, sugar, red, cfg.GatewayURL, cfg.SessionToken, cfg.HeartbeatInterval)
	if err != nil {
		sugar.Fatal(err)
	}

	go func() {
		for effect := range gw.Effects() {
			switch e := effect.(type) {
			case reducer.Restriction:
				sugar.Warnf("Restricted from server: %s, reason: %s", e.Kind, e.Reason)
			case reducer.RedirectChannel:
				entityCache.SetFocus(e.ServerID, e.ChannelID)
			case reducer.RedirectHome:
				entityCache.SetFocus("", "")
			}
		}
	}()

	fmt.Println("Client is running")

	err = gw.Run(ctx)
	if err != nil && ctx.Err() == nil {
		sugar.Fatal(err)
	}
}
