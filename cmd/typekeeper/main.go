package main

import (
	"context"
	"errors"
	"log"
	_ "time/tzdata" // zone database for images without /usr/share/zoneinfo

	"github.com/m3rciful/typekeeper/core/cmd"
	"github.com/m3rciful/typekeeper/internal/app"
	"github.com/m3rciful/typekeeper/internal/config"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(ctx context.Context, carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg, ok := carrier.(*config.Config)
			if !ok {
				return nil, errors.New("unexpected config type")
			}
			a, err := app.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
