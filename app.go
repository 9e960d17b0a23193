package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/hunterjsb/clubscout/internal/config"
	"github.com/hunterjsb/clubscout/internal/ea"
	"github.com/hunterjsb/clubscout/internal/llm"
	"github.com/hunterjsb/clubscout/internal/mirror"
	"github.com/hunterjsb/clubscout/internal/scout"
	"github.com/hunterjsb/clubscout/internal/selection"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the wired components shared by every command
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	resolver *scout.Resolver
	service  *scout.Service
	llm      *llm.Client
	closers  []func() error
}

func newApp(bot bool) (*app, error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return nil, err
	}
	if bot {
		err = cfg.ValidateBot()
	} else {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	matchTypes, err := club.ParseMatchTypes(cfg.Report.MatchTypes)
	if err != nil {
		return nil, err
	}

	eaClient := ea.NewClient(ea.ClientConfig{
		BaseURL:   cfg.EA.BaseURL,
		Timeout:   cfg.EA.Timeout,
		RateLimit: cfg.EA.RateLimit,
		Logger:    logger,
	})
	sources := ea.Partitions(eaClient, cfg.EA.Platforms, cfg.Report.MatchCap)
	if cfg.Mirror.Enabled() {
		sources = append(sources, mirror.New(mirror.Config{
			BaseURL:   cfg.Mirror.BaseURL,
			Timeout:   cfg.Mirror.Timeout,
			RateLimit: cfg.Mirror.RateLimit,
			PageTTL:   cfg.Mirror.PageTTL,
			Logger:    logger,
		}))
	}

	store, err := a.newStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.llm = llm.NewClient(llm.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Logger:      logger,
	})

	a.resolver = scout.NewResolver(sources, scout.ResolverConfig{
		Rank:   cfg.Report.RankResults,
		Logger: logger,
	})
	assembler := scout.NewAssembler(sources, scout.Limits{
		MatchTypes:    matchTypes,
		MatchCap:      cfg.Report.MatchCap,
		MemberCap:     cfg.Report.MemberCap,
		InfoBudget:    cfg.Report.InfoBudget,
		StatsBudget:   cfg.Report.StatsBudget,
		MatchesBudget: cfg.Report.MatchesBudget,
	}, cfg.OpenAI.SystemPrompt, logger)

	gate := selection.NewGate(store, selection.DefaultLimit)
	a.service = scout.NewService(a.resolver, gate, assembler, a.llm, logger)

	logger.Debug("components wired",
		zap.Int("sources", len(sources)),
		zap.Bool("mirror", cfg.Mirror.Enabled()),
		zap.Bool("redis", cfg.Redis.Addr != ""),
	)
	return a, nil
}

// newStore uses Redis when REDIS_ADDR is set and an in-memory store otherwise
func (a *app) newStore() (selection.Store, error) {
	ttl := a.cfg.Selection.TTL
	if a.cfg.Redis.Addr == "" {
		store := selection.NewMemoryStore(ttl)
		stop := store.StartJanitor(ttl)
		a.closers = append(a.closers, func() error {
			stop()
			return nil
		})
		return store, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", a.cfg.Redis.Addr, err)
	}
	a.closers = append(a.closers, client.Close)
	return selection.NewRedisStore(client, ttl), nil
}

// Close releases everything newApp opened, newest first
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("error during cleanup", zap.Error(err))
		}
	}
	a.closers = nil
}
