package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"hpblackjack-server/internal/config"
)

// Issuer issues the JWT
const Issuer = "hpblackjack-server"

// Audience is the intended JWT audience
const Audience = "hpblackjack"

// ErrMissingSubject is returned for a token that does not name an identity
var ErrMissingSubject = errors.New("missing subject")

var publicKey *rsa.PublicKey
var privateKey *rsa.PrivateKey

// LoadKeys will load the public and private keys
// this method should only be called once.
// The private key is optional, a server that only validates tokens does not need it.
func LoadKeys() error {
	cfg := config.Instance().JWT

	pub, err := loadPublicKey(cfg.PublicKey)
	if err != nil {
		return err
	}

	var priv *rsa.PrivateKey
	if cfg.PrivateKey != "" {
		priv, err = loadPrivateKey(cfg.PrivateKey)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}

			logrus.WithField("path", cfg.PrivateKey).Warn("no private key, tokens cannot be signed")
		}
	}

	SetKeys(pub, priv)
	return nil
}

// SetKeys replaces the keys used to validate and sign tokens
func SetKeys(pub *rsa.PublicKey, priv *rsa.PrivateKey) {
	publicKey = pub
	privateKey = priv
}

// Sign will sign a JWT for the identity
func Sign(identity string) (string, error) {
	if privateKey == nil {
		panic("LoadKeys() not called")
	}

	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{Audience},
		ID:       uuid.New().String(),
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   Issuer,
		Subject:  identity,
	})

	return token.SignedString(privateKey)
}

// ValidIdentity will validate a signed JWT and return its subject
func ValidIdentity(signedString string) (string, error) {
	if publicKey == nil {
		panic("LoadKeys() not called")
	}

	token, err := jwtgo.ParseWithClaims(signedString, &jwtgo.RegisteredClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodRSA); !ok {
			return nil, errors.New("expected RS256 signing method")
		}

		return publicKey, nil
	}, jwtgo.WithAudience(Audience), jwtgo.WithIssuer(Issuer))

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwtgo.RegisteredClaims)
	if !ok {
		return "", fmt.Errorf("expected jwt.RegisteredClaims, got %T", token.Claims)
	}

	if claims.Subject == "" {
		return "", ErrMissingSubject
	}

	return claims.Subject, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read public key: %w", err)
	}

	pem, err := jwtgo.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return pem, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read private key: %w", err)
	}

	pem, err := jwtgo.ParseRSAPrivateKeyFromPEM(b)
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA private key: %w", err)
	}

	return pem, nil
}
