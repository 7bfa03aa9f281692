// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bridge

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"zapper/internal/config"
	"zapper/internal/device"
	"zapper/internal/logger"
)

// APIServer handles REST API requests for the bridge
type APIServer struct {
	registry        *Registry
	database        *Database
	config          *config.Config
	logger          zerolog.Logger
	server          *http.Server
	jwtService      *JWTService
	passwordService *PasswordService
	authMiddleware  *AuthMiddleware
	started         time.Time
}

// NewAPIServer creates a new API server
func NewAPIServer(cfg *config.Config, registry *Registry, database *Database) *APIServer {
	jwtService := NewJWTService(cfg.Bridge.Auth.JWTSecret, cfg.Bridge.Auth.JWTIssuer, cfg.Bridge.Auth.JWTExpiry())
	passwordService := NewPasswordService()
	authMiddleware := NewAuthMiddleware(jwtService, database, cfg.Bridge.Auth.PasswordHash != "")

	return &APIServer{
		registry:        registry,
		database:        database,
		config:          cfg,
		logger:          logger.New(),
		jwtService:      jwtService,
		passwordService: passwordService,
		authMiddleware:  authMiddleware,
		started:         time.Now(),
	}
}

// Handler builds the full route tree
func (api *APIServer) Handler() http.Handler {
	router := mux.NewRouter()

	router.Use(api.loggingMiddleware)
	router.Use(api.corsMiddleware)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	apiRouter.HandleFunc("/health", api.handleHealth).Methods("GET")
	apiRouter.HandleFunc("/auth/login", api.handleLogin).Methods("POST")

	apiRouter.Handle("/status", api.authMiddleware.RequireAuth(http.HandlerFunc(api.handleStatus))).Methods("GET")
	apiRouter.Handle("/devices", api.authMiddleware.RequireAuth(http.HandlerFunc(api.handleDevices))).Methods("GET")
	apiRouter.Handle("/devices/{device_id}/action", api.authMiddleware.RequireAuth(http.HandlerFunc(api.handleDeviceAction))).Methods("POST")
	apiRouter.Handle("/history", api.authMiddleware.RequireAuth(http.HandlerFunc(api.handleHistory))).Methods("GET")

	return router
}

// Start starts the HTTP API server
func (api *APIServer) Start(address string) error {
	api.server = &http.Server{
		Addr:         address,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	api.logger.Info().
		Str("address", address).
		Msg("Starting bridge API server")

	return api.server.ListenAndServe()
}

// Stop stops the API server
func (api *APIServer) Stop() error {
	if api.server != nil {
		return api.server.Close()
	}
	return nil
}

// Middleware
func (api *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		api.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("API request")
	})
}

func (api *APIServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Response helpers
func (api *APIServer) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (api *APIServer) sendError(w http.ResponseWriter, status int, message string) {
	api.sendJSON(w, status, map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (api *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (api *APIServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.sendError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Password == "" {
		api.sendError(w, http.StatusBadRequest, "Password is required")
		return
	}

	if api.config.Bridge.Auth.PasswordHash == "" {
		api.sendError(w, http.StatusServiceUnavailable, "Password login is not configured, run bridge hash-password first")
		return
	}

	valid, err := api.passwordService.VerifyPassword(req.Password, api.config.Bridge.Auth.PasswordHash)
	if err != nil {
		api.logger.Error().Err(err).Msg("Failed to verify password")
		api.sendError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}
	if !valid {
		api.logger.Debug().Msg("Invalid password during login attempt")
		api.sendError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := api.jwtService.GenerateToken()
	if err != nil {
		api.logger.Error().Err(err).Msg("Failed to generate token")
		api.sendError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	api.logger.Info().Msg("Login successful")
	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"token":      token,
		"expires_in": int(api.config.Bridge.Auth.JWTExpiry().Seconds()),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (api *APIServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	tvState, _ := api.registry.Process(DeviceTV, []byte(`{"type": "remote", "action": "state"}`))

	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "running",
		"uptime":       time.Since(api.started).Round(time.Second).String(),
		"device_count": api.registry.Count(),
		"tv":           tvState,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (api *APIServer) handleDevices(w http.ResponseWriter, r *http.Request) {
	infos := api.registry.Infos()
	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"devices": infos,
		"count":   len(infos),
	})
}

func (api *APIServer) handleDeviceAction(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["device_id"]

	var req struct {
		Type       device.ActionType      `json:"type"`
		Action     string                 `json:"action"`
		Parameters map[string]interface{} `json:"parameters,omitempty"`
		Nonce      string                 `json:"nonce,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.sendError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	request := device.ActionRequest{
		Type:       req.Type,
		Action:     req.Action,
		Parameters: req.Parameters,
	}
	actionJSON, err := json.Marshal(request)
	if err != nil {
		api.sendError(w, http.StatusBadRequest, "Invalid action request")
		return
	}

	response, err := api.registry.ProcessWithNonce(deviceID, req.Nonce, actionJSON)
	if err != nil {
		api.logger.Error().
			Str("device_id", deviceID).
			Err(err).
			Msg("Failed to process device action")
		api.sendError(w, http.StatusInternalServerError, "Failed to process action")
		return
	}

	if err := api.database.RecordAction(deviceID, &request, response); err != nil {
		api.logger.Warn().
			Str("device_id", deviceID).
			Err(err).
			Msg("Failed to record action in history")
	}

	api.sendJSON(w, http.StatusOK, response)
}

func (api *APIServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.sendError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = parsed
	}

	var records []*ActionRecord
	var err error
	if deviceID := r.URL.Query().Get("device"); deviceID != "" {
		records, err = api.database.DeviceActions(deviceID, limit)
	} else {
		records, err = api.database.RecentActions(limit)
	}
	if err != nil {
		api.logger.Error().Err(err).Msg("Failed to query action history")
		api.sendError(w, http.StatusInternalServerError, "Failed to query history")
		return
	}

	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"actions": records,
		"count":   len(records),
	})
}
