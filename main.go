package main

import (
	"log"
	"os"

	"github.com/SanskarBabel/BuyerBase/routes"
	"github.com/SanskarBabel/BuyerBase/services"
	"github.com/SanskarBabel/BuyerBase/storage"
	"github.com/SanskarBabel/BuyerBase/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	db, err := storage.Connect()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access database handle: %v", err)
	}
	defer sqlDB.Close()

	redisClient := storage.ConnectRedis()
	defer redisClient.Close()

	buyerService := services.NewBuyerService(db)
	buyerHandler := routes.NewBuyerHandler(buyerService)
	authHandler := &routes.AuthHandler{
		DB:     db,
		Redis:  redisClient,
		Mailer: utils.NewMailerFromEnv(),
	}

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	auth := app.Party("/api/auth")
	{
		auth.Post("/magic-link", authHandler.RequestMagicLink)
		auth.Post("/verify", authHandler.VerifyMagicLink)
	}

	buyers := app.Party("/api/buyers", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		buyers.Get("/", buyerHandler.List)
		buyers.Post("/", buyerHandler.Create)
		buyers.Post("/import", buyerHandler.Import)
		buyers.Get("/{id}", buyerHandler.Get)
		buyers.Put("/{id}", buyerHandler.Update)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("BuyerBase listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
