package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenExpiry     = 24 * time.Hour
	maxObserverName = 16
	anySector       = "*"
)

var bcryptCost = 12

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrBadPassword  = errors.New("wrong operator password")
	ErrWrongSector  = errors.New("token not valid for this sector")
)

// Auth issues and checks observer tokens. Without an operator password
// the server is open and tokens are optional.
type Auth struct {
	secret       []byte
	operatorHash []byte
}

// NewAuth creates an Auth handler. The signing secret is persisted in db
// when one is available so tokens survive restarts.
func NewAuth(db *DB, operatorPassword string) (*Auth, error) {
	a := &Auth{secret: loadOrCreateSecret(db)}
	if operatorPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(operatorPassword), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash operator password: %w", err)
		}
		a.operatorHash = hash
	}
	return a, nil
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// Open reports whether observers may connect without a token
func (a *Auth) Open() bool {
	return a.operatorHash == nil
}

// IssueToken checks the operator password and signs an observer token for
// sectorID ("" or "*" for every sector).
func (a *Auth) IssueToken(password, name, sectorID string) (string, error) {
	if !a.Open() {
		if err := bcrypt.CompareHashAndPassword(a.operatorHash, []byte(password)); err != nil {
			return "", ErrBadPassword
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Observer"
	}
	if len(name) > maxObserverName {
		name = name[:maxObserverName]
	}
	if sectorID == "" {
		sectorID = anySector
	}
	claims := jwt.MapClaims{
		"sub": name,
		"sid": sectorID,
		"jti": uuid.NewString(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken returns the observer name and sector scope of a token
func (a *Auth) ValidateToken(tokenStr string) (string, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}
	name, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", "", ErrInvalidToken
	}
	return name, sid, nil
}

// Authorize decides whether a websocket observer may watch sectorID
func (a *Auth) Authorize(tokenStr, sectorID string) (string, error) {
	if tokenStr == "" {
		if a.Open() {
			return "Observer", nil
		}
		return "", ErrInvalidToken
	}
	name, sid, err := a.ValidateToken(tokenStr)
	if err != nil {
		return "", err
	}
	if sid != anySector && sid != sectorID {
		return "", ErrWrongSector
	}
	return name, nil
}
