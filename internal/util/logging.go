package util

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

type errorBody struct {
	Error        string `json:"error"`
	ShouldLogout bool   `json:"shouldLogout,omitempty"`
}

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

// HandleError : стандартное тело ошибки {"error": "..."}
func HandleError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, errorBody{Error: message})
}

// HandleAuthError : 401 с флагом shouldLogout, по которому клиент сбрасывает сессию
func HandleAuthError(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusUnauthorized, errorBody{Error: message, ShouldLogout: true})
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("ошибка кодирования ответа: %v", err)
	}
}
