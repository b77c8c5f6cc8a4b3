package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/marbabud/domownik/internal/models"
	"github.com/marbabud/domownik/internal/utils"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// login handles user login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// 1. Find User
	var user models.UserAccount
	if err := r.db.Where("username = ?", loginReq.Username).First(&user).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		respondError(w, http.StatusUnauthorized, "Account disabled")
		return
	}

	// 2. Check Password
	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 3. Update Last Login
	now := time.Now()
	user.LastLogin = &now
	r.db.Save(&user)

	// 4. Generate Tokens
	accessToken, refreshToken, err := utils.GenerateTokens(&user, r.cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tokens": map[string]string{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
		"user": user,
	})
}

// register handles user registration. New accounts are installers unless an
// admin asks for another role.
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if regReq.Username == "" || regReq.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	role := regReq.Role
	if role == "" {
		role = models.RoleMonter
	}
	if !models.ValidRole(role) {
		respondError(w, http.StatusBadRequest, "Unknown role")
		return
	}
	if role != models.RoleMonter && r.callerRole(req) != models.RoleAdmin {
		respondError(w, http.StatusForbidden, "Only an admin can assign that role")
		return
	}

	hashedPassword, err := utils.HashPassword(regReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.UserAccount{
		Username:    regReq.Username,
		Password:    hashedPassword,
		DisplayName: regReq.DisplayName,
		Role:        role,
		IsActive:    true,
	}

	if err := r.db.Create(&user).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create user (username might exist)")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&user, r.cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "User created but failed to generate tokens")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"tokens": map[string]string{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
		"user": user,
	})
}

// callerRole extracts the role from an optional Bearer token. Registration is
// an open endpoint, so the middleware never runs for it.
func (r *Router) callerRole(req *http.Request) string {
	authHeader := req.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	claims, err := utils.ValidateToken(parts[1], r.cfg.JWTSecret)
	if err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

// logout handles user logout
func (r *Router) logout(w http.ResponseWriter, req *http.Request) {
	// Stateless JWTs; the client drops its tokens
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
