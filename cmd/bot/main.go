package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/dungeon-run-discord/internal/catalog"
	"github.com/KirkDiggler/dungeon-run-discord/internal/config"
	"github.com/KirkDiggler/dungeon-run-discord/internal/handlers/discord"
	"github.com/KirkDiggler/dungeon-run-discord/internal/repositories/players"
	"github.com/KirkDiggler/dungeon-run-discord/internal/services"
	rewardService "github.com/KirkDiggler/dungeon-run-discord/internal/services/reward"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Application ID: %s", cfg.Discord.AppID)
	if cfg.Discord.GuildID != "" {
		log.Printf("Guild ID: %s", cfg.Discord.GuildID)
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	// Load the dungeon catalog
	cat := catalog.Load(cfg.Game.DataPath)
	log.Printf("Loaded %d dungeons from %s", cat.Len(), cfg.Game.DataPath)

	providerConfig := &services.ProviderConfig{
		Catalog:    cat,
		VoteWindow: cfg.Game.VoteWindow,
	}

	// Keep Redis client for cleanup
	var redisClient *redis.Client

	// Try Redis for player persistence, fall back to in-memory
	if cfg.Redis.Addr != "" {
		log.Printf("Connecting to Redis at: %s", cfg.Redis.Addr)

		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
			cancel()
			log.Printf("Failed to connect to Redis: %v", pingErr)
			log.Println("Falling back to in-memory player repository")
			redisClient = nil
		} else {
			cancel()
			log.Println("Successfully connected to Redis")
			providerConfig.PlayerRepository = players.NewRedisRepository(&players.RedisRepoConfig{
				Client: redisClient,
			})
		}
	} else {
		log.Println("No REDIS_ADDR configured, using in-memory player repository")
	}

	// The vote resolution hook needs the handler, which needs the provider,
	// so the hook binds to the handler variable and fires only after wiring
	var handler *discord.Handler
	providerConfig.OnVoteResolved = func(res *rewardService.Resolution) {
		if handler != nil {
			handler.HandleVoteResolution(dg, res)
		}
	}

	serviceProvider := services.NewProvider(providerConfig)

	handler = discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
	})

	// Register interaction handler
	dg.AddHandler(handler.HandleInteraction)

	// Open connection to Discord
	err = dg.Open()
	if err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		return
	}
	defer func() {
		clientErr := dg.Close()
		if clientErr != nil {
			log.Printf("Failed to close Discord connection: %v", clientErr)
		}
	}()

	// Register commands
	// Use empty string for global commands, or set a specific guild ID for testing
	if err := handler.RegisterCommands(dg, cfg.Discord.GuildID); err != nil {
		log.Printf("Failed to register commands: %v", err)
		return
	}

	if cfg.Discord.GuildID != "" {
		log.Printf("Registered commands for guild: %s", cfg.Discord.GuildID)
	} else {
		log.Println("Registered global commands (may take up to 1 hour to propagate)")
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	fmt.Println("Shutting down...")

	// Clean up Redis connection if we have one
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			log.Println("Closed Redis connection")
		}
	}
}
