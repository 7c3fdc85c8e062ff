package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/demanda-service/internal/api"
	"github.com/St1cky1/demanda-service/internal/config"
	"github.com/St1cky1/demanda-service/internal/infrastructure/client"
	"github.com/St1cky1/demanda-service/internal/repository"
	"github.com/St1cky1/demanda-service/internal/usecase"
	"github.com/St1cky1/demanda-service/internal/worker"
	"github.com/St1cky1/demanda-service/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Ошибка конфигурации:", err)
	}

	// Запускаем миграции
	if err := runMigrations(cfg.DatabasePath); err != nil {
		log.Fatal("❌ Ошибка миграций:", err)
	}

	// Подключаемся к БД
	sqlite, err := client.NewSQLiteClient(cfg.DatabasePath)
	if err != nil {
		log.Fatal("❌ Ошибка подключения к БД:", err)
	}
	defer sqlite.Close()
	fmt.Println("✅ Подключение к БД установлено")

	// Инициализируем репозитории
	demandaRepo := repository.NewDemandaRepository(sqlite.DB)
	auditRepo := repository.NewDemandaAuditRepository(sqlite.DB)

	// RabbitMQ необязателен: без брокера аудит пишется напрямую в БД
	var publisher usecase.AuditPublisher
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("⚠️  RabbitMQ недоступен, аудит пишется напрямую: %v", err)
		} else {
			defer rabbitMQ.Close()
			publisher = rabbitMQ
			fmt.Println("✅ Подключение к RabbitMQ установлено")
		}
	}

	demandaService := usecase.NewDemandaService(demandaRepo, auditRepo, publisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	var wg sync.WaitGroup

	// Воркер аудита нужен только при живом брокере
	if publisher != nil {
		auditWorker := worker.NewAuditWorker(cfg.RabbitMQURL, auditRepo)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Запуск Audit Worker...")
			auditWorker.Start(workerCtx)
		}()
	}

	// Сброс повторяющихся демандов по расписанию
	recurrenceWorker := worker.NewRecurrenceWorker(demandaService, cfg.RecurrenceCron)
	if err := recurrenceWorker.Start(); err != nil {
		log.Fatal("❌ Ошибка запуска recurrence worker:", err)
	}
	defer recurrenceWorker.Stop()

	router := api.NewRouter(demandaService, cfg.StaticDir)
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		fmt.Printf("✅ HTTP сервер запущен на порту %s\n", cfg.HTTPPort)
		fmt.Printf(" API: http://localhost:%s/api/tasks\n", cfg.HTTPPort)
		fmt.Printf(" Health: http://localhost:%s/health\n", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server error: %v", err)
		}
	}()

	// Ждем сигнал завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	fmt.Println("Для остановки нажмите Ctrl+C")
	<-sigChan

	fmt.Println("Завершение работы...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Ошибка остановки HTTP сервера: %v", err)
	}

	workerCancel()
	wg.Wait()
	fmt.Println("✅ Приложение завершено корректно")
}

func runMigrations(dbPath string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("ошибка чтения миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("ошибка создания мигратора: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	fmt.Println("✅ Миграции выполнены успешно")
	return nil
}
