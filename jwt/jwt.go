package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("token inválido")

// Gera um token CSRF assinado (HS256) contendo o nonce informado
func GenerateToken(secret []byte, nonce string, expTime time.Time) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["nonce"] = nonce
	claims["exp"] = expTime.Unix()
	claims["iat"] = time.Now().Unix()

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Valida o token e devolve o nonce
func VerifyToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	claims := token.Claims.(jwt.MapClaims)
	nonce, ok := claims["nonce"].(string)
	if !ok || nonce == "" {
		return "", ErrInvalidToken
	}

	return nonce, nil
}
