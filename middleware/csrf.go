package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"Loja/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFFieldName  = "csrfmiddlewaretoken"
	CSRFHeaderName = "X-CSRFToken"
	CSRFContextKey = "CSRFToken"
)

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// Proteção CSRF por double submit: o token do cookie precisa voltar no
// formulário (ou no cabeçalho) de toda requisição que altera dados.
func CSRFMiddleware(secret []byte, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieToken, _ := c.Cookie(CSRFCookieName)
		validCookie := false
		if cookieToken != "" {
			_, err := jwt.VerifyToken(cookieToken, secret)
			validCookie = err == nil
		}

		if !isSafeMethod(c.Request.Method) {
			submitted := c.GetHeader(CSRFHeaderName)
			if submitted == "" {
				submitted = c.PostForm(CSRFFieldName)
			}
			if !validCookie || subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) != 1 {
				log.Printf("Token CSRF inválido: %s %s\n", c.Request.Method, c.Request.URL.Path)
				c.HTML(http.StatusForbidden, "erro.html", gin.H{
					"status":  http.StatusForbidden,
					"message": "Falha na verificação CSRF. Recarregue a página e tente novamente.",
				})
				c.Abort()
				return
			}
		}

		token := cookieToken
		if !validCookie {
			var err error
			token, err = jwt.GenerateToken(secret, uuid.NewString(), time.Now().Add(ttl))
			if err != nil {
				log.Printf("Não foi possível gerar o token CSRF: %v\n", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			// Legível por JavaScript, que o devolve no cabeçalho X-CSRFToken
			c.SetCookie(CSRFCookieName, token, int(ttl.Seconds()), "/", "", false, false)
		}

		c.Set(CSRFContextKey, token)
		c.Next()
	}
}
