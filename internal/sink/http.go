package sink

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenAudience = "/v1/meals/"

// HTTPWriter posts meals to a remote menu API.
type HTTPWriter struct {
	httpClient *http.Client
	baseURL    string
	adminKey   string
	relationID string
}

// NewHTTPWriter creates a writer for the API at baseURL. adminKey has the form
// "id:hexsecret"; relationID is attached to every record as the plan relation.
func NewHTTPWriter(baseURL, adminKey, relationID string) *HTTPWriter {
	return &HTTPWriter{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminKey:   adminKey,
		relationID: relationID,
	}
}

type mealRelations struct {
	Plan         string   `json:"plan"`
	Recipe       []string `json:"recipe,omitempty"`
	Participants []string `json:"participants,omitempty"`
}

type mealPayload struct {
	Name      string        `json:"name"`
	Date      string        `json:"date"`
	Relations mealRelations `json:"relations"`
}

// Write implements Writer.
func (w *HTTPWriter) Write(ctx context.Context, rec Record) error {
	token, err := w.createAdminToken()
	if err != nil {
		return fmt.Errorf("failed to create admin token: %w", err)
	}

	payload := mealPayload{
		Name:      rec.Name,
		Date:      rec.At.Format(time.RFC3339),
		Relations: mealRelations{Plan: w.relationID},
	}
	if rec.HasRecipeRelation() {
		payload.Relations.Recipe = []string{rec.RecipeID}
		payload.Relations.Participants = rec.Participants
	}

	body, err := json.Marshal(map[string]any{"meals": []mealPayload{payload}})
	if err != nil {
		return fmt.Errorf("failed to marshal meal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/api/v1/meals/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sink api error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// createAdminToken generates a short-lived JWT for the admin API.
func (w *HTTPWriter) createAdminToken() (string, error) {
	id, secretHex, ok := strings.Cut(w.adminKey, ":")
	if !ok || id == "" {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": tokenAudience,
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
