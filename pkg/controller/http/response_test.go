package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/vatracker/pkg/controller/http"
)

func TestWriteJSON(t *testing.T) {
	t.Run("encodes body with status", func(t *testing.T) {
		w := httptest.NewRecorder()
		httpctrl.WriteJSON(context.Background(), w, http.StatusCreated, map[string]int{"dms_sent": 3})

		gt.Number(t, w.Code).Equal(http.StatusCreated)
		gt.String(t, w.Header().Get("Content-Type")).Equal("application/json")
		gt.String(t, w.Body.String()).Equal("{\"dms_sent\":3}\n")
	})

	t.Run("unencodable body becomes a server error", func(t *testing.T) {
		w := httptest.NewRecorder()
		httpctrl.WriteJSON(context.Background(), w, http.StatusOK, map[string]any{"ch": make(chan int)})

		gt.Number(t, w.Code).Equal(http.StatusInternalServerError)
		gt.String(t, w.Body.String()).Contains("Internal Server Error")
	})
}
