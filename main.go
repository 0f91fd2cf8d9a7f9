package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/payment-evidence-ocr/client"
	"github.com/Aashish23092/payment-evidence-ocr/client/tesseract"
	"github.com/Aashish23092/payment-evidence-ocr/config"
	"github.com/Aashish23092/payment-evidence-ocr/handler"
	"github.com/Aashish23092/payment-evidence-ocr/logger"
	"github.com/Aashish23092/payment-evidence-ocr/metrics"
	"github.com/Aashish23092/payment-evidence-ocr/repository"
	"github.com/Aashish23092/payment-evidence-ocr/service"
	"github.com/Aashish23092/payment-evidence-ocr/storage"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()
	log := logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	files, err := storage.NewLocalStorage(cfg.UploadFolder)
	if err != nil {
		log.Error("failed to prepare upload folder", "path", cfg.UploadFolder, "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	// Tesseract first, PaddleOCR as fallback when configured
	engines := []client.OCREngine{
		tesseract.NewClient(cfg.TesseractDataPath, cfg.OCRLanguage, cfg.OCRPageSegMode, cfg.OCRPreprocess),
	}
	if paddle := client.NewPaddleClient(cfg.PaddleOCRURL); paddle != nil {
		engines = append(engines, paddle)
	}
	ocr := client.NewChainOCR(log, m.OCRFailed, engines...)
	log.Info("ocr engines ready", "engines", ocr.Name())

	// Initialize service layer
	cases := repository.NewCaseRepository(db)
	payments := repository.NewPaymentRepository(db)
	notes := repository.NewNoteRepository(db)

	paymentService := service.NewPaymentService(cases, payments, files, ocr, service.NewPDFProcessor(), service.PaymentServiceConfig{
		Workers:          cfg.OCRWorkers,
		MaxFileSize:      cfg.MaxFileSize,
		ReviewConfidence: cfg.ReviewConfidence,
		Location:         cfg.Location,
		Recorder:         m,
		Logger:           log,
	})
	caseService := service.NewCaseService(cases, payments, notes, files, log)
	exportService := service.NewExportService(cases, payments, files, log)

	// Initialize handler layer
	router := handler.NewRouter(handler.Routes{
		Cases:              handler.NewCaseHandler(caseService),
		Payments:           handler.NewPaymentHandler(paymentService, files),
		Exports:            handler.NewExportHandler(exportService),
		Metrics:            m.Handler(),
		MaxMultipartMemory: cfg.MaxFileSize,
		Logger:             log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting payment evidence OCR service", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
