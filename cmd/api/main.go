package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"echodft/cmd/internal/analyzer"
	"echodft/cmd/internal/domain/sqlite"
	"echodft/cmd/internal/domain/sqlite/repository"
	"echodft/cmd/internal/http/handler"
	authmw "echodft/cmd/internal/http/middleware"
	cognitoclient "echodft/cmd/internal/infrastructure/aws/cognito"
	"echodft/cmd/internal/infrastructure/aws/storage"
	"echodft/cmd/internal/infrastructure/aws/websocket"
	"echodft/cmd/internal/service"
	"echodft/cmd/internal/service/jobs"
	"echodft/cmd/internal/utils"
	"echodft/cmd/internal/utils/uid"
	"echodft/cmd/internal/utils/validators"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

const (
	envVarsPrefix = "/echodft/prod/"
	defaultPort   = "7070"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loads env vars depending on environment
	if os.Getenv("GO_ENV") == "production" {
		loadProdEnv(ctx) // AWS SSM Parameter Store
	} else if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}

	validate := validator.New()
	validators.Register(validate)
	uid.InitFromEnv()

	db, err := sqlite.Init()
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	cognitoRegion := os.Getenv("AWS_COGNITO_REGION")
	userPoolID := os.Getenv("COGNITO_USER_POOL_ID")
	if err := utils.InitJWKS(cognitoRegion, userPoolID); err != nil {
		log.Fatalf("failed to init JWKS: %v", err)
	}

	cogClient, err := cognitoclient.NewCognitoClient(ctx, os.Getenv("COGNITO_APP_CLIENT_ID"), userPoolID)
	if err != nil {
		log.Fatalf("failed to init cognito client: %v", err)
	}

	// A missing gateway key is reported per request, not at boot.
	pipeline, err := analyzer.NewPipeline(analyzer.ConfigFromEnv())
	if err != nil {
		log.Fatalf("failed to build analysis pipeline: %v", err)
	}

	// Repos
	userRepo := repository.NewUserRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	// Services
	wsService := service.NewWebSocketService(connRepo, newGatewayClient(ctx))
	userService := service.NewUserService(userRepo, validate, cogClient)
	analysisService := service.NewAnalysisService(
		analysisRepo,
		pipeline,
		validate,
		newArchive(ctx),
		wsService,
		envInt("DASHBOARD_ROW_LIMIT", service.DefaultRowLimit),
	)

	// Handlers
	analysisRoutes := handler.NewAnalysisDefault(analysisService)
	userRoutes := handler.NewUserDefault(userService)
	wsRoutes := handler.NewWSDefault(wsService)

	auth := authmw.NewAuthMiddleware(&authmw.AuthMiddlewareConfig{UserRepo: userRepo})
	analyzeAuth := authmw.NewAuthMiddleware(&authmw.AuthMiddlewareConfig{UserRepo: userRepo, Reject: authmw.RejectAsAnalysis})

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)
	e.Pre(authmw.NewCORSMiddleware())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.BodyLimit("1M"))

	api := e.Group("/api")

	// Analysis
	api.POST("/analyze-company", analysisRoutes.AnalyzeCompany, analyzeAuth)
	api.GET("/companies", analysisRoutes.ListCompanies, auth)
	api.GET("/companies/:id", analysisRoutes.GetCompany, auth)

	// Users
	api.GET("/users/@me", userRoutes.GetSelf, auth)
	api.POST("/users/check-email", userRoutes.CheckEmail)
	api.POST("/users", userRoutes.CreateUser)
	api.POST("/users/login", userRoutes.CreateLogin)
	api.POST("/users/confirms", userRoutes.ConfirmSignup)
	api.POST("/users/confirms/resend", userRoutes.ResendConfirmation)

	// API Gateway WebSocket integration
	e.POST("/ws/connect", wsRoutes.HandleConnect, auth)
	e.POST("/ws/disconnect", wsRoutes.HandleDisconnect)
	e.POST("/ws/message", wsRoutes.HandleMessage)

	// Docker Compose healthcheck
	e.GET("/health", healthCheckRoute)

	go jobs.NewConnectionCleaner(wsService).Start(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	go func() {
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down cleanly: %v", err)
	}
}

// newArchive returns nil when no bucket is configured, which turns archiving off.
func newArchive(ctx context.Context) storage.S3Client {
	if os.Getenv("S3_BUCKET_NAME") == "" {
		log.Warn("S3_BUCKET_NAME is not set, reports will not be archived")
		return nil
	}

	client, err := storage.NewStorageClient(ctx)
	if err != nil {
		log.Fatalf("failed to init S3 client: %v", err)
	}
	return client
}

func newGatewayClient(ctx context.Context) websocket.GatewayClient {
	endpoint := os.Getenv("WS_GATEWAY_ENDPOINT")
	if endpoint == "" {
		log.Warn("WS_GATEWAY_ENDPOINT is not set, live progress events are disabled")
		return websocket.NoopGatewayClient{}
	}

	client, err := websocket.NewAWSGatewayClient(ctx, endpoint, os.Getenv("WS_GATEWAY_REGION"))
	if err != nil {
		log.Fatalf("failed to init websocket gateway client: %v", err)
	}
	return client
}

func loadProdEnv(ctx context.Context) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	client := ssm.NewFromConfig(cfg)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	loaded := 0
	prefixLength := len(envVarsPrefix)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			log.Fatalf("unable to load prod environment, %v", err)
		}

		// Export vars
		for _, param := range out.Parameters {
			key := aws.ToString(param.Name)[prefixLength:]
			if err := os.Setenv(key, aws.ToString(param.Value)); err != nil {
				log.Fatalf("unable to set environment variable, %v", err)
			}
			loaded++
		}
	}
	log.Debugf("loaded %d prod environment variables", loaded)
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func healthCheckRoute(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
