package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"Loja/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	productsCacheKey = "products"
	// Incrementada a cada escrita; o cache só é regravado se não mudou
	productsGenerationKey = "products:generation"
	productsCacheTTL      = 10 * time.Minute
)

var errStaleProducts = errors.New("produtos alterados durante a leitura")

// Lê a lista de produtos do Redis; se estiver vazia ou falhar, lê do banco e
// reconstrói o cache. Erros do Redis nunca chegam ao usuário.
func loadProducts(ctx context.Context, db *gorm.DB, rdb *redis.Client) ([]models.Product, error) {
	generation := ""
	useCache := rdb != nil
	if useCache {
		products, err := readProductsCache(ctx, rdb)
		if err != nil {
			log.Printf("Não foi possível ler produtos do Redis: %v\n", err)
		} else if len(products) > 0 {
			return products, nil
		}

		// A geração é lida antes do banco para detectar escritas concorrentes
		generation, err = readProductsGeneration(ctx, rdb)
		if err != nil {
			log.Printf("Não foi possível ler a geração do cache: %v\n", err)
			useCache = false
		}
	}

	products, err := fetchProducts(db)
	if err != nil {
		return nil, err
	}

	if useCache && len(products) > 0 {
		err := writeProductsCache(ctx, rdb, generation, products)
		if errors.Is(err, errStaleProducts) || errors.Is(err, redis.TxFailedErr) {
			log.Println("Produtos alterados durante a leitura, cache não regravado")
		} else if err != nil {
			log.Printf("Não foi possível gravar produtos no Redis: %v\n", err)
		}
	}

	return products, nil
}

func fetchProducts(db *gorm.DB) ([]models.Product, error) {
	products := []models.Product{}
	err := db.Preload("Categories").Order("id").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("não foi possível ler produtos: %w", err)
	}
	return products, nil
}

func readProductsCache(ctx context.Context, rdb *redis.Client) ([]models.Product, error) {
	redisProducts, err := rdb.ZRange(ctx, productsCacheKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(redisProducts))
	for _, redisProduct := range redisProducts {
		var product models.Product
		if err := json.Unmarshal([]byte(redisProduct), &product); err != nil {
			return nil, fmt.Errorf("não foi possível desserializar produto: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}

func readProductsGeneration(ctx context.Context, rdb *redis.Client) (string, error) {
	generation, err := rdb.Get(ctx, productsGenerationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return generation, err
}

// Regrava o sorted set inteiro (score = ID) numa única transação, desde que a
// geração ainda seja a lida antes da consulta ao banco
func writeProductsCache(ctx context.Context, rdb *redis.Client, generation string, products []models.Product) error {
	members := make([]redis.Z, 0, len(products))
	for _, product := range products {
		productJSON, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("não foi possível serializar produto %d: %w", product.ID, err)
		}
		members = append(members, redis.Z{
			Score:  float64(product.ID),
			Member: productJSON,
		})
	}

	return rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, productsGenerationKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleProducts
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, productsCacheKey)
			pipe.ZAdd(ctx, productsCacheKey, members...)
			pipe.Expire(ctx, productsCacheKey, productsCacheTTL)
			return nil
		})
		return err
	}, productsGenerationKey)
}

// Chamado depois de cada commit que altera produtos
func invalidateProductsCache(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, productsGenerationKey)
		pipe.Del(ctx, productsCacheKey)
		return nil
	})
	if err != nil {
		log.Printf("Não foi possível invalidar o cache de produtos: %v\n", err)
	}
}
