package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/kmuyenga/solestore-backend/internal/modules/cart"
	"github.com/kmuyenga/solestore-backend/internal/modules/catalog"
	"github.com/kmuyenga/solestore-backend/internal/modules/checkout"
	"github.com/kmuyenga/solestore-backend/internal/modules/diag"
	"github.com/kmuyenga/solestore-backend/internal/modules/notifier"
	"github.com/kmuyenga/solestore-backend/internal/modules/pricing"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	db, err := sql.Open("sqlite3", envOr("DB_PATH", "solestore.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully opened the store database!")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Catalog ─────────────────────────────────────────────
	catalogRepo, err := catalog.NewSQLiteRepository(db)
	if err != nil {
		log.Fatal(err)
	}
	products := catalog.DefaultProducts()
	if err := catalogRepo.Seed(context.Background(), products); err != nil {
		log.Fatal(err)
	}
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	// ── Pricing policy ──────────────────────────────────────
	policy := pricing.DefaultPolicy()
	for _, id := range catalog.SaleProductIDs(products) {
		policy.PromoProductIDs[id] = struct{}{}
	}
	applyPolicyEnv(&policy)

	// ── Cart ────────────────────────────────────────────────
	cartRepo, err := cart.NewSQLiteRepository(db)
	if err != nil {
		log.Fatal(err)
	}
	cartService := cart.NewService(cartRepo, catalogService)
	cart.NewHandler(cartService, policy).RegisterRoutes(router)

	// ── Delivery channel ────────────────────────────────────
	emailCfg := notifier.EmailConfig{
		BaseURL:    envOr("DELIVERY_BASE_URL", "https://api.emailjs.com"),
		ServiceID:  os.Getenv("DELIVERY_SERVICE_ID"),
		TemplateID: os.Getenv("DELIVERY_TEMPLATE_ID"),
		PublicKey:  os.Getenv("DELIVERY_PUBLIC_KEY"),
	}
	channel := notifier.NewEmailChannel(emailCfg)
	lifecycle := notifier.NewLifecycle(channel.(notifier.Pinger), notifier.LifecycleConfig{})
	lifecycle.Init(context.Background())

	// ── Diagnostics ─────────────────────────────────────────
	probe := diag.NewProbe(db, emailCfg.BaseURL, emailCfg.Configured())
	diag.NewHandler(probe).RegisterRoutes(router)

	// ── Checkout ────────────────────────────────────────────
	checkoutRepo, err := checkout.NewSQLiteRepository(db)
	if err != nil {
		log.Fatal(err)
	}
	checkoutService := checkout.NewService(cartService, policy, channel, lifecycle, probe,
		checkoutRepo, checkout.Options{Currency: envOr("CURRENCY", "USD")})
	checkout.NewHandler(checkoutService).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := envOr("APP_PORT", "8080")
	fmt.Printf("Solestore API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return n
}

// applyPolicyEnv lets deployments override the standing promotion without a
// rebuild. PROMO_PRODUCT_IDS replaces the sale set entirely when set.
func applyPolicyEnv(p *pricing.Policy) {
	p.PromoUnitPrice = envInt64("PROMO_PRICE", p.PromoUnitPrice)
	p.FlatShippingFee = envInt64("SHIPPING_FLAT_FEE", p.FlatShippingFee)
	p.FreeShippingThreshold = envInt64("FREE_SHIPPING_THRESHOLD", p.FreeShippingThreshold)

	raw := os.Getenv("PROMO_PRODUCT_IDS")
	if raw == "" {
		return
	}
	ids := map[int64]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			log.Printf("ignoring promo product id %q: %v", part, err)
			continue
		}
		ids[id] = struct{}{}
	}
	p.PromoProductIDs = ids
}
