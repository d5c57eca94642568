package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	natsadapter "github.com/samirrijal/halalfinder/internal/adapters/nats"
	"github.com/samirrijal/halalfinder/internal/adapters/postgres"
	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/pkg/config"
	"github.com/samirrijal/halalfinder/internal/pkg/logging"
)

// The review worker consumes review-created events and verifies them:
// reviews that pass the moderation checks are flagged is_verified so the
// UI can badge them. Requires the postgres backend; against the hosted
// backend verification is the host's job.
func main() {
	cfg, err := config.Load("halalfinder-reviewworker")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Backend.Driver != "postgres" {
		log.Fatal("review worker requires backend.driver=postgres")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	reviews := postgres.NewReviewRepo(db)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeReviewCreated(ctx, func(ctx context.Context, review *domain.Review) error {
		if !passesModeration(review) {
			slog.Info("review held for manual moderation",
				"review_id", review.ID, "venue_id", review.VenueID)
			return nil
		}
		if err := reviews.MarkVerified(ctx, review.ID); err != nil {
			slog.Error("mark verified", "review_id", review.ID, "error", err)
			return err
		}
		slog.Info("review verified", "review_id", review.ID, "venue_id", review.VenueID)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("review worker started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("review worker stopping")
}

// passesModeration applies the automatic checks. Anything with links or a
// suspiciously short comment goes to the manual queue instead.
func passesModeration(review *domain.Review) bool {
	comment := strings.ToLower(review.Comment)
	if len(strings.TrimSpace(comment)) < 10 {
		return false
	}
	for _, marker := range []string{"http://", "https://", "www."} {
		if strings.Contains(comment, marker) {
			return false
		}
	}
	return review.Rating >= 1 && review.Rating <= 5
}
