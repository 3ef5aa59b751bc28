package main

import (
	"log"

	"Loja/config"
	"Loja/routers"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig(config.LoadEnv())
	if err != nil {
		log.Fatalf("Não foi possível carregar a configuração: %v", err)
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	db, err := config.SetupDatabaseConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco de dados: %v", err)
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb, err := config.SetupRedisConnection(cfg.Redis)
	if err != nil {
		log.Fatalf("Não foi possível conectar ao Redis: %v", err)
	}
	if rdb == nil {
		log.Println("Redis não configurado, cache de produtos desativado")
	} else {
		defer rdb.Close()
	}

	router := routers.SetupRouters(db, rdb, cfg.CSRF)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Printf("Servidor encerrado: %v", err)
	}
}
