package routers

import (
	"log"

	"Loja/config"
	"Loja/handlers"
	"Loja/middleware"
	"Loja/templates"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRouters(db *gorm.DB, rdb *redis.Client, csrf config.CSRFConfig) *gin.Engine {
	//Roteador do gin
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), middleware.LoggerMiddleware(), gin.Recovery())
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Printf("Não foi possível configurar proxies confiáveis: %v\n", err)
	}

	router.HandleMethodNotAllowed = true
	router.SetHTMLTemplate(templates.Load())
	router.NoRoute(handlers.NotFoundHandler)
	router.NoMethod(handlers.MethodNotAllowedHandler)

	//Verificação de saúde, sem CSRF
	router.GET("/healthz", func(context *gin.Context) {
		handlers.HealthCheckHandler(context, db, rdb)
	})

	////Páginas do catálogo, protegidas por CSRF
	pages := router.Group("/")
	pages.Use(middleware.CSRFMiddleware([]byte(csrf.Secret), csrf.TTL))
	{
		//Lista de produtos
		pages.GET("/", func(context *gin.Context) {
			handlers.ListProductsHandler(context, db, rdb)
		})
		//Adicionar produto
		pages.GET("/adicionar/", func(context *gin.Context) {
			handlers.AddProductHandler(context, db, rdb)
		})
		pages.POST("/adicionar/", func(context *gin.Context) {
			handlers.AddProductHandler(context, db, rdb)
		})
		//Editar produto
		pages.GET("/editar/:id/", func(context *gin.Context) {
			handlers.EditProductHandler(context, db, rdb)
		})
		pages.POST("/editar/:id/", func(context *gin.Context) {
			handlers.EditProductHandler(context, db, rdb)
		})
		//Excluir produto
		pages.GET("/excluir/:id/", func(context *gin.Context) {
			handlers.DeleteProductHandler(context, db, rdb)
		})
		pages.POST("/excluir/:id/", func(context *gin.Context) {
			handlers.DeleteProductHandler(context, db, rdb)
		})
	}

	return router
}
