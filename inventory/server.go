package inventory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

// Seed is the fixture an inventory server answers from.
type Seed struct {
	Products []models.Product `json:"products"`
	Stock    []models.Stock   `json:"stock"`
}

// LoadSeed reads a JSON fixture shaped like Seed.
func LoadSeed(path string) (*Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory seed: %w", err)
	}
	var seed Seed
	if err = json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse inventory seed %s: %w", path, err)
	}
	return &seed, nil
}

type server struct {
	products map[int64]models.Product
	stock    map[int64]models.Stock
	logger   *zap.Logger
}

// NewServer returns a read-only handler serving the seed over the same routes the client calls.
func NewServer(seed *Seed, logger *zap.Logger) http.Handler {
	s := &server{
		products: make(map[int64]models.Product, len(seed.Products)),
		stock:    make(map[int64]models.Stock, len(seed.Stock)),
		logger:   logger,
	}
	for _, p := range seed.Products {
		s.products[p.ID] = p
	}
	for _, st := range seed.Stock {
		s.stock[st.ID] = st
	}

	r := mux.NewRouter()
	r.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", s.getProduct).Methods(http.MethodGet)
	r.HandleFunc("/stock/{id:[0-9]+}", s.getStock).Methods(http.MethodGet)
	return r
}

func (s *server) listProducts(w http.ResponseWriter, _ *http.Request) {
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	s.writeJSON(w, http.StatusOK, out)
}

func (s *server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	p, ok := s.products[id]
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *server) getStock(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	st, ok := s.stock[id]
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}
