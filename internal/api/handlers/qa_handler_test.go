package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The invalid-parameter paths reject the request before any service is
// touched, so the handler can be wired with nil services here.
func newAskApp() *fiber.App {
	app := fiber.New()
	h := NewQAHandler(nil, nil, zap.NewNop())
	app.Get("/ask", h.Ask)
	return app
}

func TestAskParameterValidation(t *testing.T) {
	app := newAskApp()

	t.Run("Should reject a missing query", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ask", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject a whitespace-only query", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ask?query=%20%20%09", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject a non-numeric min_score", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ask?query=visa&min_score=high", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject a non-boolean autosave", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ask?query=visa&autosave=maybe", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
