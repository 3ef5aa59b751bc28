package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"Loja/forms"
	"Loja/models"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Lista todos os produtos
func ListProductsHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	products, err := loadProducts(c, db, rdb)
	if err != nil {
		log.Printf("Erro ao listar produtos: %v\n", err)
		renderError(c, http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "lista_produtos.html", gin.H{
		"products": products,
	})
}

// Adiciona um produto
func AddProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	form := forms.NewProductForm(nil)
	if c.Request.Method == http.MethodPost && form.Bind(c) {
		var product models.Product
		if err := saveProduct(db, &product, form); err != nil {
			log.Printf("Erro ao adicionar produto: %v\n", err)
			renderError(c, http.StatusInternalServerError)
			return
		}
		invalidateProductsCache(c, rdb)
		c.Redirect(http.StatusFound, "/")
		return
	}

	renderProductForm(c, "Adicionar produto", form)
}

// Edita um produto existente
func EditProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	product, ok := findProduct(c, db)
	if !ok {
		return
	}

	form := forms.NewProductForm(product)
	if c.Request.Method == http.MethodPost && form.Bind(c) {
		if err := saveProduct(db, product, form); err != nil {
			log.Printf("Erro ao editar produto %d: %v\n", product.ID, err)
			renderError(c, http.StatusInternalServerError)
			return
		}
		invalidateProductsCache(c, rdb)
		c.Redirect(http.StatusFound, "/")
		return
	}

	renderProductForm(c, "Editar produto", form)
}

// Exclui um produto após a confirmação
func DeleteProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	product, ok := findProduct(c, db)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		renderConfirmDelete(c, product)
		return
	}

	if err := deleteProduct(db, product); err != nil {
		log.Printf("Erro ao excluir produto %d: %v\n", product.ID, err)
		renderError(c, http.StatusInternalServerError)
		return
	}
	invalidateProductsCache(c, rdb)
	c.Redirect(http.StatusFound, "/")
}

// Busca o produto pelo id da rota; responde 404/500 e devolve false se falhar
func findProduct(c *gin.Context, db *gorm.DB) (*models.Product, bool) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || productID <= 0 {
		renderError(c, http.StatusNotFound)
		return nil, false
	}

	var product models.Product
	err = db.Preload("Categories").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		renderError(c, http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		log.Printf("Erro ao buscar produto %d: %v\n", productID, err)
		renderError(c, http.StatusInternalServerError)
		return nil, false
	}

	return &product, true
}

// Grava o produto e suas categorias numa transação
func saveProduct(db *gorm.DB, product *models.Product, form *forms.ProductForm) error {
	if err := form.Apply(product); err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("falha ao abrir transação: %w", tx.Error)
	}

	categories, err := resolveCategories(tx, form.CategoryNames())
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Omit("Categories").Save(product).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("falha ao salvar produto: %w", err)
	}

	association := tx.Model(product).Association("Categories")
	if len(categories) == 0 {
		err = association.Clear()
	} else {
		err = association.Replace(categories)
	}
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("falha ao atualizar categorias: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("falha ao confirmar transação: %w", err)
	}

	return nil
}

// Busca cada categoria pelo nome, criando as que não existem
func resolveCategories(tx *gorm.DB, names []string) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		var category models.Category
		err := tx.Where(models.Category{Name: name}).FirstOrCreate(&category).Error
		if err != nil {
			return nil, fmt.Errorf("falha ao buscar categoria %q: %w", name, err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func deleteProduct(db *gorm.DB, product *models.Product) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("falha ao abrir transação: %w", tx.Error)
	}

	if err := tx.Model(product).Association("Categories").Clear(); err != nil {
		tx.Rollback()
		return fmt.Errorf("falha ao limpar categorias: %w", err)
	}

	if err := tx.Delete(product).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("falha ao excluir produto: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("falha ao confirmar transação: %w", err)
	}

	return nil
}
