package templates

import (
	"embed"
	"html/template"
	"strings"

	ptBRLocale "github.com/go-playground/locales/pt_BR"
	"github.com/shopspring/decimal"
)

//go:embed *.html
var files embed.FS

var ptBR = ptBRLocale.New()

var funcs = template.FuncMap{
	"join":  strings.Join,
	"price": formatPrice,
}

// Valor com vírgula decimal e ponto de milhar (ex.: 1.234,50)
func formatPrice(value decimal.Decimal) string {
	amount, _ := value.Round(2).Float64()
	return ptBR.FmtNumber(amount, 2)
}

// Load interpreta todos os templates embutidos; o nome de cada um é o nome
// do arquivo (ex.: "lista_produtos.html").
func Load() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "*.html"))
}
