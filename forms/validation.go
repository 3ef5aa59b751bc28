package forms

import (
	"log"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	ptBRLocale "github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ptBRTranslations "github.com/go-playground/validator/v10/translations/pt_BR"
	"github.com/shopspring/decimal"
)

var (
	setupOnce  sync.Once
	translator ut.Translator

	maxPrice = decimal.NewFromInt(100000000)
	// Só dígitos e ponto: expoentes ("1e-9") custariam caro ao decimal
	priceFormat = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)
)

// Mensagens próprias, além das traduções padrão do validator
var customMessages = map[string]string{
	"price":  "{0} deve ser um valor positivo com no máximo duas casas decimais",
	"number": "{0} deve conter apenas dígitos",
}

// Registra regras e traduções pt-BR no validator usado pelo gin
func setupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Println("Engine de validação do gin não é go-playground/validator")
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			if label := field.Tag.Get("label"); label != "" {
				return label
			}
			return field.Name
		})

		if err := v.RegisterValidation("price", validatePrice); err != nil {
			log.Printf("Falha ao registrar a regra price: %v\n", err)
		}

		locale := ptBRLocale.New()
		uni := ut.New(locale, locale)
		trans, _ := uni.GetTranslator(locale.Locale())

		if err := ptBRTranslations.RegisterDefaultTranslations(v, trans); err != nil {
			log.Printf("Falha ao registrar traduções pt-BR: %v\n", err)
			return
		}

		for tag, message := range customMessages {
			message := message
			err := v.RegisterTranslation(tag, trans,
				func(t ut.Translator) error {
					return t.Add(tag, message, true)
				},
				func(t ut.Translator, fe validator.FieldError) string {
					text, err := t.T(fe.Tag(), fe.Field())
					if err != nil {
						return fe.Error()
					}
					return text
				},
			)
			if err != nil {
				log.Printf("Falha ao registrar tradução de %s: %v\n", tag, err)
			}
		}

		translator = trans
	})
}

// Preço positivo em notação simples, com até duas casas decimais e que caiba
// em decimal(10,2)
func validatePrice(fl validator.FieldLevel) bool {
	text := strings.TrimSpace(fl.Field().String())
	if !priceFormat.MatchString(text) {
		return false
	}
	price, err := decimal.NewFromString(text)
	if err != nil {
		return false
	}
	if !price.IsPositive() || !price.LessThan(maxPrice) {
		return false
	}
	return true
}

func translate(fe validator.FieldError) string {
	if translator == nil {
		return fe.Error()
	}
	return fe.Translate(translator)
}
