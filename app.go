package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"orderdesk/catalog"
	"orderdesk/config"
	"orderdesk/db"
	"orderdesk/rdx"
	"orderdesk/session"
	"orderdesk/summary"
)

// loadCatalog reads the configured source once. The MongoDB connection is
// only needed for the load; the catalog never changes afterwards.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	switch cfg.Catalog.Source {
	case config.SourceMongo:
		client, err := db.Connect(ctx, cfg.Catalog.MongoURI)
		if err != nil {
			return nil, err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		src := catalog.MongoSource{Collection: db.ProductsCollection(client, cfg.Catalog.Database, cfg.Catalog.Collection)}
		return catalog.NewCache(src).Get(ctx)
	default:
		src := catalog.CSVSource{Path: cfg.Catalog.Path, Columns: cfg.Catalog.Columns}
		return catalog.NewCache(src).Get(ctx)
	}
}

// newStore returns the session store and, for Redis, the client to close
// on shutdown.
func newStore(ctx context.Context, cfg *config.Config) (session.Store, *redis.Client, error) {
	if cfg.Session.Store != config.StoreRedis {
		return session.NewMemoryStore(), nil, nil
	}
	ttl, err := cfg.SessionTTL()
	if err != nil {
		return nil, nil, err
	}
	client, err := rdx.NewClient(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client, "", ttl), client, nil
}

// sessionSecret returns the configured cookie key, or a random one that
// lasts until the process exits.
func sessionSecret(cfg *config.Config, logger *zap.Logger) ([]byte, error) {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret), nil
	}
	if cfg.Session.Store == config.StoreRedis {
		logger.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return key, nil
}

// undrawableText returns the product names and summary labels the PDF
// receipt would garble. It is empty once summary.pdf_font is set.
func undrawableText(cfg *config.Config, cat *catalog.Catalog) []string {
	if cfg.Summary.PDFFont != "" {
		return nil
	}
	l := cfg.Summary.Labels
	texts := []string{l.Title, l.Customer, l.OrderNo, l.Date, l.TotalAmount, l.TotalPoints, l.Currency, l.PointsUnit, l.Placeholder}
	for _, p := range cat.Products() {
		texts = append(texts, p.Name)
	}
	var bad []string
	for _, t := range texts {
		if !summary.CoreFontCanDraw(t) && !slices.Contains(bad, t) {
			bad = append(bad, t)
		}
	}
	return bad
}

func warnPDFFont(cfg *config.Config, cat *catalog.Catalog, logger *zap.Logger) {
	bad := undrawableText(cfg, cat)
	if len(bad) == 0 {
		return
	}
	logger.Warn("PDF receipts will garble non-Latin text; set summary.pdf_font to a UTF-8 TrueType font",
		zap.Int("count", len(bad)),
		zap.Strings("examples", bad[:min(3, len(bad))]),
	)
}
