package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/zzstoatzz/slate/internal/ui"
)

var simServices = []string{"auth-service", "api-gateway", "payment-service", "notification-service"}

var simKinds = map[string][]string{
	"auth-service":         {"user_login", "user_logout", "password_reset", "token_refresh"},
	"api-gateway":          {"request", "rate_limit", "error"},
	"payment-service":      {"transaction", "refund", "subscription", "payment_failed"},
	"notification-service": {"email_sent", "sms_sent", "push_notification"},
}

// runSimulate logs random events across four services, paced by a rate
// limiter so the timestamps spread out instead of landing in one burst.
func runSimulate(args []string, dirs dataDirs) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	count := fs.Int("count", 20, "Number of events to generate")
	perSecond := fs.Float64("rate", 50, "Maximum events per second")
	fs.Parse(args)

	ctx := context.Background()
	log := openEventLog(dirs)
	defer log.Close()

	limiter := rate.NewLimiter(rate.Limit(*perSecond), 1)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ui.Bold.Println("Simulating random events...")
	fmt.Println()

	for i := 0; i < *count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			ui.Errorf("rate limiter: %v", err)
			os.Exit(1)
		}

		service := simServices[rng.Intn(len(simServices))]
		kinds := simKinds[service]
		kind := kinds[rng.Intn(len(kinds))]

		data := map[string]any{
			"random_id": rng.Intn(9000) + 1000,
		}
		switch service {
		case "auth-service":
			data["user_id"] = fmt.Sprintf("user_%d", rng.Intn(900)+100)
		case "api-gateway":
			data["path"] = pick(rng, "/api/users", "/api/orders", "/api/products")
			data["method"] = pick(rng, "GET", "POST", "PUT", "DELETE")
			data["status"] = []int{200, 201, 400, 401, 404, 500}[rng.Intn(6)]
		case "payment-service":
			data["amount"] = float64(rng.Intn(99000)+1000) / 100
			data["currency"] = pick(rng, "USD", "EUR", "GBP")
		}

		if _, err := log.LogEvent(ctx, service, kind, data); err != nil {
			ui.Errorf("log event: %v", err)
			os.Exit(1)
		}
		ui.Successf("%s: %s", service, kind)
	}

	fmt.Println()
	ui.Infof("Simulation complete. Use 'list-service' or 'list-type' to query events.")
}

func pick(rng *rand.Rand, choices ...string) string {
	return choices[rng.Intn(len(choices))]
}
