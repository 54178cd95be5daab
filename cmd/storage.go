package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-ClubBooking/internal/config"
	bookingRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/booking"
	facilityRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/facility"
	membershipRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/membership"
	"github.com/m04kA/SMC-ClubBooking/internal/infra/storage/memory"
	userRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/user"
	bookingsService "github.com/m04kA/SMC-ClubBooking/internal/service/bookings"
	createBookingUC "github.com/m04kA/SMC-ClubBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-ClubBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ClubBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClubBooking/pkg/logger"
	"github.com/m04kA/SMC-ClubBooking/pkg/metrics"
	"github.com/m04kA/SMC-ClubBooking/pkg/txmanager"
)

// bookingStore объединение контрактов репозитория бронирований всех потребителей
type bookingStore interface {
	createBookingUC.BookingRepository
	getAvailableSlotsUC.BookingRepository
	bookingsService.BookingRepository
}

// txManager менеджер транзакций допуска и чтения слотов
type txManager interface {
	createBookingUC.TransactionManager
	getAvailableSlotsUC.TransactionManager
}

// storage набор хранилищ выбранного драйвера
type storage struct {
	bookings    bookingStore
	facilities  createBookingUC.FacilityCatalog
	memberships createBookingUC.MembershipDirectory
	users       bookingsService.UserDirectory
	txManager   txManager
	close       func()
}

// openPostgres подключается к PostgreSQL. При включённых метриках соединение
// оборачивается сборщиком статистики пула и длительности запросов.
func openPostgres(cfg *config.Config, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var conn interface {
		dbmetrics.DBExecutor
		dbmetrics.TxBeginner
	}
	if m != nil {
		conn = dbmetrics.WrapWithDefault(db, m, cfg.Database.DBName, stopCh)
		log.Info("Database metrics collection started")
	} else {
		conn = dbmetrics.NewPlain(db)
	}

	return &storage{
		bookings:    bookingRepo.NewRepository(conn),
		facilities:  facilityRepo.NewRepository(conn),
		memberships: membershipRepo.NewRepository(conn),
		users:       userRepo.NewRepository(conn),
		txManager: txmanager.NewTransactionManager(conn,
			txmanager.WithLockTimeout(cfg.Booking.LockTimeout()),
			txmanager.WithMaxRetries(cfg.Booking.MaxTxRetries),
		),
		close: func() { _ = db.Close() },
	}, nil
}

// openMemory поднимает хранилище в памяти процесса и заполняет его из seed-файла
func openMemory(cfg *config.Config, log *logger.Logger) (*storage, error) {
	store := memory.NewStore()

	if cfg.Storage.SeedFile != "" {
		seed, err := memory.LoadSeed(cfg.Storage.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := store.Apply(seed); err != nil {
			return nil, err
		}
		log.Info("In-memory storage seeded from %s (users=%d, memberships=%d, facilities=%d)",
			cfg.Storage.SeedFile, len(seed.Users), len(seed.Memberships), len(seed.Facilities))
	}

	return &storage{
		bookings:    memory.NewBookingRepository(store),
		facilities:  memory.NewFacilityCatalog(store),
		memberships: memory.NewMembershipDirectory(store),
		users:       memory.NewUserDirectory(store),
		txManager:   memory.NewTxManager(store, cfg.Booking.LockTimeout()),
		close:       func() {},
	}, nil
}
