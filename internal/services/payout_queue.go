package services

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/interfaces"
	"github.com/finalxcard/invest-api/internal/models"
)

// PayoutJob queue'da işlenecek payout yürüyüşü
type PayoutJob struct {
	StartUserID int
	ResultChan  chan PayoutOutcome
}

// PayoutOutcome job sonucu
type PayoutOutcome struct {
	Result *models.PayoutResult
	Error  error
}

// PayoutQueue payout yürüyüşlerini sıralayan worker queue'su
// Aynı ata zincirine dokunan eşzamanlı yürüyüşlerin çakışması yerine
// işler worker'lara dağıtılır; carry-forward sayaçları yine de son savunmadır
type PayoutQueue struct {
	jobChan    chan PayoutJob
	workers    int
	bufferSize int
	wg         sync.WaitGroup
	service    interfaces.PayoutServiceInterface
}

// NewPayoutQueue yeni queue oluşturur
func NewPayoutQueue(workers int, service interfaces.PayoutServiceInterface, bufferSize int) *PayoutQueue {
	return &PayoutQueue{
		jobChan:    make(chan PayoutJob, bufferSize),
		workers:    workers,
		bufferSize: bufferSize,
		service:    service,
	}
}

// Start worker'ları başlatır
func (q *PayoutQueue) Start() {
	log.Info().
		Int("workers", q.workers).
		Int("buffer_size", q.bufferSize).
		Msg("🔄 Payout queue başlatıldı")

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop queue'yu durdurur ve işlenmekte olan job'ları bekler
func (q *PayoutQueue) Stop() {
	close(q.jobChan)
	q.wg.Wait()
	log.Info().Msg("⏹️ Payout queue durduruldu")
}

// worker tek bir worker döngüsü
func (q *PayoutQueue) worker(id int) {
	defer q.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("recover", r).
				Int("worker_id", id).
				Msg("🚨 Payout worker panikledi ama toparlandı")
		}
	}()

	log.Info().Int("worker_id", id).Msg("🚀 Payout worker başlatıldı")

	for job := range q.jobChan {
		log.Debug().
			Int("worker_id", id).
			Int("start_user", job.StartUserID).
			Msg("💼 Payout yürüyüşü işleniyor")

		result, err := q.service.RunBinaryPayout(job.StartUserID)

		job.ResultChan <- PayoutOutcome{
			Result: result,
			Error:  err,
		}
		close(job.ResultChan)

		if err != nil {
			log.Error().Err(err).Int("worker_id", id).Msg("❌ Payout yürüyüşü başarısız")
		}
	}

	log.Info().Int("worker_id", id).Msg("🛑 Payout worker durduruldu")
}

// AddJob queue'ya yeni yürüyüş ekler
func (q *PayoutQueue) AddJob(startUserID int) <-chan PayoutOutcome {
	resultChan := make(chan PayoutOutcome, 1)

	job := PayoutJob{
		StartUserID: startUserID,
		ResultChan:  resultChan,
	}

	select {
	case q.jobChan <- job:
		log.Debug().Int("start_user", startUserID).Msg("📤 Payout job queue'ya eklendi")
	default:
		// Queue dolu
		go func() {
			resultChan <- PayoutOutcome{
				Result: nil,
				Error:  fmt.Errorf("payout queue dolu, daha sonra tekrar deneyin"),
			}
			close(resultChan)
		}()
	}

	return resultChan
}
