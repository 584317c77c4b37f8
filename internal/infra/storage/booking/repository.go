package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/pkg/dbmetrics"
	"github.com/andmv/LDM-BookingService/pkg/psqlbuilder"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

// коды ошибок PostgreSQL, означающие проигрыш в гонке за слот:
// 23P01 - exclusion constraint (GiST по listing_id + tstzrange),
// 23505 - unique violation
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

var bookingColumns = []string{
	"id",
	"listing_id",
	"service_id",
	"customer_id",
	"start_datetime",
	"end_datetime",
	"timezone",
	"status",
	"price",
	"currency",
	"external_order_ref",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
//
// Инвариант "не более одного блокирующего бронирования на пересекающийся
// диапазон" подстраховывается на уровне БД exclusion constraint'ом по
// (listing_id, tstzrange(start_datetime, end_datetime)) для блокирующих
// статусов; проигравший получает ErrSlotConflict.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"listing_id",
			"service_id",
			"customer_id",
			"start_datetime",
			"end_datetime",
			"timezone",
			"status",
			"price",
			"currency",
			"external_order_ref",
		).
		Values(
			booking.ListingID,
			booking.ServiceID,
			booking.CustomerID,
			booking.StartDatetime,
			booking.EndDatetime,
			booking.Timezone,
			booking.Status,
			booking.Price,
			booking.Currency,
			booking.ExternalOrderRef,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isConflictErr(err) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBookingRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByUserID получает список бронирований клиента, опционально по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_id": userID}).
		OrderBy("start_datetime DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByListingWithFilter получает бронирования листинга с гибкой фильтрацией
// по периоду, статусу и включению терминальных бронирований
func (r *Repository) GetByListingWithFilter(ctx context.Context, filter domain.ListingBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"listing_id": filter.ListingID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_datetime": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_datetime": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactive := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactive[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactive})
	}

	selectBuilder = selectBuilder.OrderBy("start_datetime ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByListingWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByListingWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// FindBlockingRanges возвращает занятые диапазоны листинга, пересекающие окно
// [WindowStart, WindowEnd). Полуинтервальная семантика: бронирование,
// заканчивающееся ровно в WindowStart, в выборку не попадает.
//
// Неоплаченные pending-холды старше filter.StalePendingBefore исключаются
// тем же предикатом, что использует экспирация, чтобы выдача слотов и sweep
// никогда не расходились во мнении о занятости.
//
// Внутри транзакции выборка выполняется с FOR UPDATE (сценарий create/reschedule).
func (r *Repository) FindBlockingRanges(ctx context.Context, filter domain.BlockingRangesFilter) ([]timerange.Range, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statuses := make([]string, len(filter.Statuses))
	for i, s := range filter.Statuses {
		statuses[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select("start_datetime", "end_datetime").
		From("bookings").
		Where(squirrel.Eq{"listing_id": filter.ListingID}).
		Where(squirrel.Lt{"start_datetime": filter.WindowEnd}).
		Where(squirrel.Gt{"end_datetime": filter.WindowStart}).
		Where(squirrel.Eq{"status": statuses})

	if !filter.StalePendingBefore.IsZero() {
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.NotEq{"status": string(domain.StatusPendingPayment)},
			squirrel.Expr("external_order_ref IS NOT NULL"),
			squirrel.GtOrEq{"created_at": filter.StalePendingBefore},
		})
	}

	if filter.ExcludeBookingID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *filter.ExcludeBookingID})
	}

	selectBuilder = selectBuilder.OrderBy("start_datetime ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindBlockingRanges - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindBlockingRanges - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ranges := make([]timerange.Range, 0)
	for rows.Next() {
		var rg timerange.Range
		if err := rows.Scan(&rg.Start, &rg.End); err != nil {
			return nil, fmt.Errorf("%w: FindBlockingRanges - scan row: %v", ErrScanRow, err)
		}
		ranges = append(ranges, rg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindBlockingRanges - rows error: %v", ErrScanRow, err)
	}

	return ranges, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "UpdateStatus")
}

// ConfirmPayment переводит бронирование в confirmed и привязывает внешний заказ
func (r *Repository) ConfirmPayment(ctx context.Context, id int64, orderRef *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusConfirmed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if orderRef != nil {
		updateBuilder = updateBuilder.Set("external_order_ref", *orderRef)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ConfirmPayment - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ConfirmPayment - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "ConfirmPayment")
}

// Cancel переводит бронирование в терминальный статус отмены с причиной
func (r *Repository) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "Cancel")
}

// UpdateRange атомарно обновляет временной диапазон бронирования (перенос)
func (r *Repository) UpdateRange(ctx context.Context, id int64, start, end time.Time, timezone string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("start_datetime", start).
		Set("end_datetime", end).
		Set("timezone", timezone).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateRange - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isConflictErr(err) {
			return ErrSlotConflict
		}
		return fmt.Errorf("%w: UpdateRange - execute update: %v", ErrExecQuery, err)
	}

	return checkAffected(result, "UpdateRange")
}

// FindStalePending возвращает неоплаченные холды, созданные раньше olderThan
func (r *Repository) FindStalePending(ctx context.Context, olderThan time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": domain.StatusPendingPayment}).
		Where(squirrel.Expr("external_order_ref IS NULL")).
		Where(squirrel.Lt{"created_at": olderThan}).
		OrderBy("created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindStalePending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindStalePending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// MarkExpired переводит перечисленные холды в expired.
// Guard по статусу делает операцию идемпотентной: повторный вызов по уже
// экспирированным бронированиям ничего не меняет.
func (r *Repository) MarkExpired(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": domain.StatusPendingPayment}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: MarkExpired - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: MarkExpired - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: MarkExpired - get rows affected: %v", ErrExecQuery, err)
	}

	return affected, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// rowScanner объединяет *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookingRow(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.ListingID,
		&booking.ServiceID,
		&booking.CustomerID,
		&booking.StartDatetime,
		&booking.EndDatetime,
		&booking.Timezone,
		&booking.Status,
		&booking.Price,
		&booking.Currency,
		&booking.ExternalOrderRef,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

func checkAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func isConflictErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgExclusionViolation || string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
