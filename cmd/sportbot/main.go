package main

import (
	"context"
	"log"

	"github.com/multicco/sportbot4-sub000/core/bootstrap"
	corecmd "github.com/multicco/sportbot4-sub000/core/cmd"
	"github.com/multicco/sportbot4-sub000/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := app.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			a, err := app.Bootstrap(context.Background(), cfg.(*app.Config), bootstrap.Options{})
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
