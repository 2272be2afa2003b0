package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Session represents a simple authenticated session for local use
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// authenticator holds the single session of the server. A new login replaces
// any existing session.
type authenticator struct {
	passwordHash []byte
	now          func() time.Time

	mu      sync.RWMutex
	current *Session
}

func newAuthenticator(passwordHash string) *authenticator {
	return &authenticator{
		passwordHash: []byte(passwordHash),
		now:          time.Now,
	}
}

func (a *authenticator) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(req.Password)); err != nil {
		slog.Warn("Failed login attempt", "ip", c.IP())
		return c.Status(401).JSON(fiber.Map{"error": "Invalid password"})
	}

	token, err := generateToken()
	if err != nil {
		slog.Error("Token generation failed", "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "Login failed"})
	}

	session := &Session{
		Token:     token,
		ExpiresAt: a.now().Add(SessionDuration),
	}
	a.mu.Lock()
	a.current = session
	a.mu.Unlock()

	slog.Info("Successful login", "ip", c.IP())
	return c.JSON(fiber.Map{
		"success": true,
		"token":   session.Token,
		"expires": session.ExpiresAt.Unix(),
	})
}

func (a *authenticator) handleLogout(c *fiber.Ctx) error {
	a.mu.Lock()
	a.current = nil
	a.mu.Unlock()
	slog.Info("User logged out", "ip", c.IP())
	return c.JSON(fiber.Map{"success": true})
}

func (a *authenticator) middleware(c *fiber.Ctx) error {
	// Header first, query parameter for WebSocket clients
	token := c.Get("X-Auth-Token")
	if token == "" {
		token = c.Query("token")
	}

	if !a.validateToken(token) {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.Next()
}

func (a *authenticator) validateToken(token string) bool {
	if token == "" {
		return false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.current == nil || subtle.ConstantTimeCompare([]byte(a.current.Token), []byte(token)) != 1 {
		return false
	}
	return a.now().Before(a.current.ExpiresAt)
}

func generateToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
