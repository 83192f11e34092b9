package sink

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var secret = []byte("0123456789abcdef")

type recordingServer struct {
	mu       sync.Mutex
	payloads []mealPayload
}

func (s *recordingServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		token, err := jwt.Parse(auth, func(tok *jwt.Token) (any, error) {
			assert.Equal(t, "key-id", tok.Header["kid"])
			return secret, nil
		}, jwt.WithAudience(tokenAudience), jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var body struct {
			Meals []mealPayload `json:"meals"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Meals) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.Meals[0].Name == "reject me" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}

		s.mu.Lock()
		s.payloads = append(s.payloads, body.Meals[0])
		s.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}
}

func TestHTTPWriter(t *testing.T) {
	rs := &recordingServer{}
	server := httptest.NewServer(rs.handler(t))
	defer server.Close()

	w := NewHTTPWriter(server.URL+"/", "key-id:"+hex.EncodeToString(secret), "week-42")
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	t.Run("RecipeMeal", func(t *testing.T) {
		err := w.Write(context.Background(), Record{
			At: at, Name: "Chili", RecipeID: "r1", Participants: []string{"A", "B"},
		})
		require.NoError(t, err)

		require.Len(t, rs.payloads, 1)
		got := rs.payloads[0]
		assert.Equal(t, "Chili", got.Name)
		assert.Equal(t, "2026-10-19T12:00:00Z", got.Date)
		assert.Equal(t, "week-42", got.Relations.Plan)
		assert.Equal(t, []string{"r1"}, got.Relations.Recipe)
		assert.Equal(t, []string{"A", "B"}, got.Relations.Participants)
	})

	t.Run("LeftoverHasNoRecipeRelation", func(t *testing.T) {
		err := w.Write(context.Background(), Record{
			At: at, Name: "Chili", RecipeID: "r1", Leftover: true, Participants: []string{"A"},
		})
		require.NoError(t, err)

		got := rs.payloads[len(rs.payloads)-1]
		assert.Empty(t, got.Relations.Recipe)
		assert.Empty(t, got.Relations.Participants)
		assert.Equal(t, "week-42", got.Relations.Plan)
	})

	t.Run("RejectedWrite", func(t *testing.T) {
		err := w.Write(context.Background(), Record{At: at, Name: "reject me"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 422")
	})

	t.Run("InvalidKey", func(t *testing.T) {
		bad := NewHTTPWriter(server.URL, "no-separator", "week-42")
		err := bad.Write(context.Background(), Record{At: at, Name: "Chili"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid admin key format")
	})
}

type flakyWriter struct {
	fail map[string]bool
	seen []string
}

func (f *flakyWriter) Write(_ context.Context, rec Record) error {
	f.seen = append(f.seen, rec.Name)
	if f.fail[rec.Name] {
		return errors.New("boom")
	}
	return nil
}

func TestPersist(t *testing.T) {
	w := &flakyWriter{fail: map[string]bool{"b": true, "d": true}}
	records := []Record{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}

	s := Persist(context.Background(), w, records, zap.NewNop())

	assert.Equal(t, Summary{Succeeded: 2, Failed: 2}, s)
	assert.Equal(t, []string{"a", "b", "c", "d"}, w.seen, "a failure must not stop later writes")
}
