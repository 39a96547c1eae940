// Package params разбирает параметры пути и строки запроса.
package params

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// ID читает положительный идентификатор из URL-параметра name.
func ID(r *http.Request, name string) (int64, error) {
	return parseID(chi.URLParam(r, name))
}

// QueryID читает положительный идентификатор из строки запроса.
func QueryID(r *http.Request, name string) (int64, error) {
	return parseID(r.URL.Query().Get(name))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", raw, models.ErrBadRequest)
	}
	return id, nil
}
