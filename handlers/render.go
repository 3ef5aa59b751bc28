package handlers

import (
	"net/http"

	"Loja/forms"
	"Loja/models"
	"github.com/gin-gonic/gin"
)

var errorMessages = map[int]string{
	http.StatusNotFound:            "Página não encontrada.",
	http.StatusMethodNotAllowed:    "Método não permitido.",
	http.StatusInternalServerError: "Erro interno. Tente novamente mais tarde.",
}

func renderError(c *gin.Context, status int) {
	c.HTML(status, "erro.html", gin.H{
		"status":  status,
		"message": errorMessages[status],
	})
}

func renderProductForm(c *gin.Context, title string, form *forms.ProductForm) {
	c.HTML(http.StatusOK, "produto_form.html", gin.H{
		"title":     title,
		"form":      form,
		"csrfToken": c.GetString("CSRFToken"),
	})
}

func renderConfirmDelete(c *gin.Context, product *models.Product) {
	c.HTML(http.StatusOK, "produto_confirm_delete.html", gin.H{
		"product":   product,
		"csrfToken": c.GetString("CSRFToken"),
	})
}

// Página 404 para rotas inexistentes
func NotFoundHandler(c *gin.Context) {
	renderError(c, http.StatusNotFound)
}

// Página 405 para métodos não registrados
func MethodNotAllowedHandler(c *gin.Context) {
	renderError(c, http.StatusMethodNotAllowed)
}
