package main

import (
	"fmt"
	"net/http"
	"time"

	"blog-restful/auth"
	"blog-restful/config"
	"blog-restful/controllers"
	"blog-restful/database"
	"blog-restful/repositories"
	"blog-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"go.uber.org/zap"
)

// AccessLogFilter logs every request after it completes.
func AccessLogFilter(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		chain.ProcessFilter(req, resp)

		logger.Info("Request",
			zap.String("method", req.Request.Method),
			zap.String("path", req.Request.URL.Path),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("user_agent", req.Request.UserAgent()),
		)
	}
}

func main() {
	// Initialize configs
	config.InitConfig()

	var logger *zap.Logger
	switch config.AppConfig.LogLevel {
	case "debug":
		logger, _ = zap.NewDevelopment()
	default:
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync() // Make sure the buffer is flushed before the program exits

	auth.SetSigningKey([]byte(config.AppConfig.JwtSecret))
	auth.SetTokenTTL(time.Duration(config.AppConfig.TokenTTLMinutes) * time.Minute)

	database.InitDB()

	userRepo := repositories.NewUserRepository(database.DB)
	postRepo := repositories.NewPostRepository(database.DB)
	tagRepo := repositories.NewTagRepository(database.DB)

	userService := services.NewUserService(userRepo, config.AppConfig.BcryptCost, logger)
	postService := services.NewPostService(postRepo, tagRepo, logger)

	userController := controllers.NewUserController(userService)
	postController := controllers.NewPostController(postService, userService)

	container := restful.NewContainer()
	container.Filter(AccessLogFilter(logger))
	container.RecoverHandler(func(panicReason interface{}, w http.ResponseWriter) {
		logger.Error("Recovered from panic", zap.Any("reason", panicReason))
		w.WriteHeader(http.StatusInternalServerError)
	})

	userWS := new(restful.WebService)
	userController.RegisterRoutes(userWS)
	container.Add(userWS)

	postWS := new(restful.WebService)
	postController.RegisterRoutes(postWS)
	container.Add(postWS)

	apiConfig := restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
		PostBuildSwaggerObjectHandler: func(swo *spec.Swagger) {
			swo.Info = &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       "Blog API",
					Description: "Users, posts and tags",
					Version:     "1.0.0",
				},
			}
		},
	}
	container.Add(restfulspec.NewOpenAPIService(apiConfig))

	addr := fmt.Sprintf(":%d", config.AppConfig.HTTPPort)
	logger.Info("Starting server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, container); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
