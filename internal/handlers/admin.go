package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marbabud/domownik/internal/models"
	"github.com/marbabud/domownik/internal/utils"
)

// listUsers returns all user accounts, admins first.
func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	var users []models.UserAccount
	err := r.db.
		Order("CASE WHEN role = 'admin' THEN 1 WHEN role = 'sprzedawca' THEN 2 ELSE 3 END, created_at DESC").
		Find(&users).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// UpdateUserRequest carries editable account fields.
type UpdateUserRequest struct {
	DisplayName *string `json:"displayName"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"isActive"`
	Password    *string `json:"password"`
}

// updateUser changes role, active flag, display name or password.
func (r *Router) updateUser(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var body UpdateUserRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var user models.UserAccount
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	if body.Role != nil {
		if !models.ValidRole(*body.Role) {
			respondError(w, http.StatusBadRequest, "Unknown role")
			return
		}
		user.Role = *body.Role
	}
	if body.DisplayName != nil {
		user.DisplayName = *body.DisplayName
	}
	if body.IsActive != nil {
		user.IsActive = *body.IsActive
	}
	if body.Password != nil && *body.Password != "" {
		hashed, err := utils.HashPassword(*body.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		user.Password = hashed
	}

	if err := r.db.Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// deleteUser soft-deletes an account.
func (r *Router) deleteUser(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var user models.UserAccount
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := r.db.Delete(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
		"id":      id,
	})
}
