package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"Loja/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	maxMultipartMemory = 8 << 20
	maxCategoryLength  = 50
)

// ProductForm recebe os dados do formulário de produto. Os campos ficam como
// texto para que o formulário possa ser reexibido exatamente como foi enviado.
type ProductForm struct {
	Name        string `form:"name" label:"Nome" binding:"required,max=100"`
	Description string `form:"description" label:"Descrição" binding:"max=500"`
	Price       string `form:"price" label:"Preço" binding:"required,max=20,price"`
	Stock       string `form:"stock" label:"Estoque" binding:"required,number"`
	ImageURL    string `form:"image_url" label:"Imagem" binding:"omitempty,url,max=255"`
	Categories  string `form:"categories" label:"Categorias" binding:"max=255"`

	Errors         map[string][]string `form:"-"`
	NonFieldErrors []string            `form:"-"`
}

// NewProductForm devolve um formulário preenchido com os dados do produto,
// ou vazio quando product é nil.
func NewProductForm(product *models.Product) *ProductForm {
	form := &ProductForm{Errors: map[string][]string{}}
	if product == nil {
		return form
	}

	form.Name = product.Name
	form.Description = product.Description
	form.Price = product.Price.StringFixed(2)
	form.Stock = strconv.FormatUint(uint64(product.Stock), 10)
	form.ImageURL = product.ImageURL
	form.Categories = strings.Join(product.CategoryNames(), ", ")
	return form
}

// Bind lê o corpo da requisição, valida e informa se o formulário é válido
func (f *ProductForm) Bind(c *gin.Context) bool {
	setupValidator()
	// Campos ausentes no POST não podem herdar os valores do produto
	*f = ProductForm{Errors: map[string][]string{}}

	err := c.Request.ParseMultipartForm(maxMultipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		f.NonFieldErrors = append(f.NonFieldErrors, "Não foi possível ler o formulário")
		return false
	}

	if err := binding.MapFormWithTag(f, c.Request.PostForm, "form"); err != nil {
		f.NonFieldErrors = append(f.NonFieldErrors, err.Error())
		return false
	}
	f.trim()

	if err := binding.Validator.ValidateStruct(f); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			f.NonFieldErrors = append(f.NonFieldErrors, err.Error())
			return false
		}
		for _, fe := range validationErrors {
			f.addError(inputName(fe.StructField()), translate(fe))
		}
	}

	// Verificações que dependem de um campo já válido
	if _, ok := f.Errors["stock"]; !ok {
		if _, err := strconv.ParseUint(f.Stock, 10, 32); err != nil {
			f.addError("stock", "Estoque deve ser no máximo 4294967295")
		}
	}
	if _, ok := f.Errors["categories"]; !ok {
		for _, name := range f.CategoryNames() {
			if utf8.RuneCountInString(name) > maxCategoryLength {
				f.addError("categories", fmt.Sprintf("Categoria %q deve ter no máximo %d caracteres", name, maxCategoryLength))
			}
		}
	}

	return f.Valid()
}

func (f *ProductForm) Valid() bool {
	return len(f.Errors) == 0 && len(f.NonFieldErrors) == 0
}

// Apply copia os valores validados para o produto
func (f *ProductForm) Apply(product *models.Product) error {
	price, err := decimal.NewFromString(f.Price)
	if err != nil {
		return fmt.Errorf("preço inválido: %w", err)
	}
	stock, err := strconv.ParseUint(f.Stock, 10, 32)
	if err != nil {
		return fmt.Errorf("estoque inválido: %w", err)
	}

	product.Name = f.Name
	product.Description = f.Description
	product.Price = price.Round(2)
	product.Stock = uint(stock)
	product.ImageURL = f.ImageURL
	return nil
}

// CategoryNames separa as categorias por vírgula, sem vazios nem repetidas
func (f *ProductForm) CategoryNames() []string {
	names := []string{}
	seen := map[string]bool{}
	for _, name := range strings.Split(f.Categories, ",") {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

func (f *ProductForm) addError(field, message string) {
	f.Errors[field] = append(f.Errors[field], message)
}

func (f *ProductForm) trim() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Price = strings.TrimSpace(f.Price)
	f.Stock = strings.TrimSpace(f.Stock)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	f.Categories = strings.TrimSpace(f.Categories)
}

func inputName(structField string) string {
	field, ok := reflect.TypeOf(ProductForm{}).FieldByName(structField)
	if !ok {
		return structField
	}
	return field.Tag.Get("form")
}
