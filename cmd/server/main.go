package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"starkspan-backend/internal/adapter/api"
	"starkspan-backend/internal/adapter/client"
	"starkspan-backend/internal/adapter/imaging"
	"starkspan-backend/internal/adapter/store"
	"starkspan-backend/internal/domain/entity"
	"starkspan-backend/internal/domain/repository"
	"starkspan-backend/internal/usecase"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "starkspan-backend").Logger()
	if os.Getenv("ENV") == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	machiningRate := floatenv("MACHINING_RATE_PER_HOUR", 60)
	toolTimeout := time.Duration(intenv("TOOL_TIMEOUT_S", 30)) * time.Second
	renderDPI := floatenv("RENDER_DPI", 300)

	// Redis quote cache is optional; the pipeline is correct without it.
	var cache repository.QuoteCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		cache = store.NewRedisCache(rdb)
		logger.Info().Str("addr", addr).Msg("quote cache enabled")
	}

	rasterizer := usecase.BoundRasterizer(client.NewFitzRasterizer(renderDPI), toolTimeout)
	extractor := usecase.BoundExtractor(client.NewTesseractExtractor("eng"), toolTimeout)
	normalizer := imaging.NewNormalizer()

	orchestrator := usecase.NewOrchestrator(
		rasterizer,
		extractor,
		normalizer,
		cache,
		entity.DefaultMaterials(),
		usecase.PriceParams{MachiningRatePerHour: machiningRate},
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:   "StarkSpan Quote Backend",
		BodyLimit: 25 << 20,
	})

	handler := api.NewQuoteHandler(orchestrator)
	api.SetupRouter(app, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	logger.Info().Str("port", port).Msg("starkspan backend listening")
	if err := app.Listen(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func intenv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
