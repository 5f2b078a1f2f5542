// cmd/seedcatalog loads a demo catalog, or a CSV export of products.
// Uso: go run ./cmd/seedcatalog [--file productos.csv]
//
// CSV columns: name,description,price,category,brand,audience,stock
// Categories and brands are looked up by slug and created when missing.
package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/Renatopaccha/Dental-Gest/internal/config"
	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/infra"
	"github.com/Renatopaccha/Dental-Gest/internal/router"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gocarina/gocsv"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	flag "github.com/spf13/pflag"
)

type productRow struct {
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Price       string `csv:"price"`
	Category    string `csv:"category"`
	Brand       string `csv:"brand"`
	Audience    string `csv:"audience"`
	Stock       int    `csv:"stock"`
}

var demoCatalog = []productRow{
	{"Resina compuesta A2", "Resina fotocurable nanohíbrida, jeringa de 4 g.", "18.50", "Restauración", "3M", "PROFESSIONAL", 25},
	{"Adhesivo universal", "Sistema adhesivo de un paso, frasco de 5 ml.", "32.00", "Restauración", "3M", "PROFESSIONAL", 10},
	{"Kit de fresas diamantadas", "Juego de 10 fresas de alta velocidad.", "15.75", "Instrumental", "Jota", "STUDENT", 40},
	{"Espejo bucal #5", "Espejo plano con mango de acero inoxidable.", "3.20", "Instrumental", "Hu-Friedy", "STUDENT", 120},
	{"Guantes de nitrilo M", "Caja de 100 unidades, sin polvo.", "9.90", "Bioseguridad", "", "GENERAL", 60},
	{"Mascarillas quirúrgicas", "Caja de 50 unidades, tres capas.", "6.50", "Bioseguridad", "", "GENERAL", 3},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	file := flag.String("file", "", "CSV file with products (defaults to the demo catalog)")
	flag.Parse()

	rows := demoCatalog
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open csv")
		}
		rows = nil
		err = gocsv.UnmarshalFile(f, &rows)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse csv")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	svcs, err := router.NewServices(cfg, db, rdb, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build services")
	}

	s := &seeder{svcs: svcs, categories: map[string]string{}, brands: map[string]string{}}
	ctx := context.Background()
	created := 0
	for _, row := range rows {
		if err := s.product(ctx, row); err != nil {
			log.Error().Err(err).Str("product", row.Name).Msg("skipped")
			continue
		}
		created++
	}
	log.Info().Int("created", created).Int("rows", len(rows)).Msg("catalog seeded")
}

type seeder struct {
	svcs       *router.Services
	categories map[string]string
	brands     map[string]string
}

func (s *seeder) product(ctx context.Context, row productRow) error {
	price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
	if err != nil {
		return err
	}
	categoryID, err := s.category(ctx, row.Category, row.Audience)
	if err != nil {
		return err
	}
	req := dto.CreateProductRequest{
		Name:           row.Name,
		Description:    row.Description,
		Price:          &price,
		CategoryID:     categoryID,
		TargetAudience: row.Audience,
		StockCount:     row.Stock,
	}
	if strings.TrimSpace(row.Brand) != "" {
		brandID, err := s.brand(ctx, row.Brand)
		if err != nil {
			return err
		}
		req.BrandID = &brandID
	}
	_, err = s.svcs.Products.Create(ctx, req)
	return err
}

func (s *seeder) category(ctx context.Context, name, audience string) (string, error) {
	key := slug.Make(name)
	if id, ok := s.categories[key]; ok {
		return id, nil
	}
	existing, err := s.svcs.Categories.GetBySlug(ctx, key)
	var nf *service.NotFoundError
	switch {
	case err == nil:
		s.categories[key] = existing.ID.String()
		return s.categories[key], nil
	case !errors.As(err, &nf):
		return "", err
	}
	cat, err := s.svcs.Categories.Create(ctx, dto.CreateCategoryRequest{Name: name, TargetAudience: audience})
	if err != nil {
		return "", err
	}
	s.categories[key] = cat.ID.String()
	return s.categories[key], nil
}

func (s *seeder) brand(ctx context.Context, name string) (string, error) {
	key := slug.Make(name)
	if id, ok := s.brands[key]; ok {
		return id, nil
	}
	existing, err := s.svcs.Brands.GetBySlug(ctx, key)
	var nf *service.NotFoundError
	switch {
	case err == nil:
		s.brands[key] = existing.ID.String()
		return s.brands[key], nil
	case !errors.As(err, &nf):
		return "", err
	}
	b, err := s.svcs.Brands.Create(ctx, dto.CreateBrandRequest{Name: name, TargetAudience: "GENERAL"})
	if err != nil {
		return "", err
	}
	s.brands[key] = b.ID.String()
	return s.brands[key], nil
}
