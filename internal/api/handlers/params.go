package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// ErrInvalidParam возвращается при некорректном параметре пути или query
var ErrInvalidParam = errors.New("handlers: invalid parameter")

// PathID читает положительный int64 из переменной пути mux
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, name, raw)
	}
	return id, nil
}

// QueryString возвращает необязательный query параметр (nil, если пуст)
func QueryString(r *http.Request, name string) *string {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil
	}
	return &value
}

// QueryTime разбирает необязательный RFC3339 query параметр
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	value := QueryString(r, name)
	if value == nil {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidParam, name, err)
	}
	return &t, nil
}
