package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/services"
)

// Scheduler günlük compound işini zamanlar
// Her gece 01:00'de çalışır; tatil günü kontrolü servis tarafında yapılır
type Scheduler struct {
	cron              *cron.Cron
	investmentService *services.InvestmentService
}

// New yeni scheduler oluşturur
func New(investmentService *services.InvestmentService) *Scheduler {
	return &Scheduler{
		cron:              cron.New(),
		investmentService: investmentService,
	}
}

// Start cron işlerini kaydeder ve zamanlayıcıyı başlatır
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 1 * * *", func() {
		log.Info().Msg("⏰ Günlük compound işi tetiklendi")

		processed, total, err := s.investmentService.CompoundAllIfBusinessDay(time.Now())
		if err != nil {
			log.Error().Err(err).Msg("Günlük compound işi hata ile bitti")
			return
		}

		log.Info().
			Int("processed", processed).
			Float64("total_profit", total).
			Msg("Günlük compound işi tamamlandı")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Info().Msg("📅 Scheduler başlatıldı")
	return nil
}

// Stop zamanlayıcıyı durdurur ve çalışan işlerin bitmesini bekler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("📅 Scheduler durduruldu")
}
