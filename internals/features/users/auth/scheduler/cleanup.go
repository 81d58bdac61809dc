package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"hifzku_backend/internals/configs"
	activityService "hifzku_backend/internals/features/users/activity/service"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

// CleanupBlacklist: hapus token blacklist yang sudah expired lebih dari ttlDays.
func CleanupBlacklist(ctx context.Context, db *gorm.DB, ttlDays int) {
	log.Println("[CLEANUP] Menjalankan pembersihan token_blacklist...")
	cutoff := time.Now().UTC().Add(-time.Duration(ttlDays) * 24 * time.Hour)
	n, err := helperAuth.PurgeExpired(ctx, db, cutoff)
	if err != nil {
		log.Printf("[CLEANUP ERROR] Gagal hapus token: %v", err)
		return
	}
	log.Printf("[CLEANUP] %d token kadaluarsa dihapus", n)
}

// PruneActivity: buang jejak audit lebih tua dari retensi.
func PruneActivity(ctx context.Context, db *gorm.DB, days int) {
	n, err := activityService.Prune(ctx, db, days)
	if err != nil {
		log.Printf("[CLEANUP ERROR] Gagal prune activity_logs: %v", err)
		return
	}
	log.Printf("[CLEANUP] %d activity log dihapus", n)
}

// StartCleanupScheduler: satu cron untuk blacklist & activity log (CRON_SCHEDULE, default 02:15 harian).
func StartCleanupScheduler(db *gorm.DB) *cron.Cron {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(configs.CronSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		CleanupBlacklist(ctx, db, configs.BlacklistTTLDays)
		PruneActivity(ctx, db, configs.ActivityLogDays)
	})
	if err != nil {
		log.Printf("[CRON] jadwal %q tidak valid: %v", configs.CronSchedule, err)
		return c
	}

	c.Start()
	log.Printf("[CRON] cleanup terjadwal: %s", configs.CronSchedule)
	return c
}
