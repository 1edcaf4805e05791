package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	"github.com/ekazarov/TMS-BookingService/pkg/dbmetrics"
	"github.com/ekazarov/TMS-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий профилей доступности преподавателей.
// Профиль - это строка teacher_availability плюс три списка правил
// (повторяющиеся слоты, разовые слоты, перерывы).
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetProfile получает профиль доступности преподавателя со всеми правилами
// Возвращает ErrProfileNotFound, если профиль ещё не создавался
func (r *Repository) GetProfile(ctx context.Context, teacherID int64) (*domain.AvailabilityProfile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("teacher_id", "created_at", "updated_at").
		From("teacher_availability").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetProfile - build select query: %v", ErrBuildQuery, err)
	}

	var profile domain.AvailabilityProfile
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&profile.TeacherID,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfile - scan profile: %v", ErrScanRow, err)
	}

	profile.CreatedAt = createdAt.Time
	profile.UpdatedAt = updatedAt.Time

	if profile.Recurring, err = r.loadRecurring(ctx, executor, teacherID); err != nil {
		return nil, err
	}
	if profile.Specific, err = r.loadSpecific(ctx, executor, teacherID); err != nil {
		return nil, err
	}
	if profile.Breaks, err = r.loadBreaks(ctx, executor, teacherID); err != nil {
		return nil, err
	}

	return &profile, nil
}

// CreateProfile создает профиль доступности с переданным недельным шаблоном.
// Вызывается при первом обращении к доступности преподавателя, когда профиля
// ещё нет (ленивое создание с дефолтным шаблоном).
func (r *Repository) CreateProfile(ctx context.Context, teacherID int64, template []domain.RecurringSlot) (*domain.AvailabilityProfile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("teacher_availability").
		Columns("teacher_id").
		Values(teacherID).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateProfile - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		if isDuplicateProfile(err) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("%w: CreateProfile - execute insert: %v", ErrExecQuery, err)
	}

	recurring, err := r.insertRecurring(ctx, executor, teacherID, template)
	if err != nil {
		return nil, err
	}

	return &domain.AvailabilityProfile{
		TeacherID: teacherID,
		Recurring: recurring,
		Specific:  []domain.SpecificDateSlot{},
		Breaks:    []domain.BreakPeriod{},
		CreatedAt: createdAt.Time,
		UpdatedAt: updatedAt.Time,
	}, nil
}

// ReplaceRules заменяет все три списка правил профиля.
// Профиль никогда не удаляется целиком - редактируются только его списки.
// Вызывать внутри транзакции, чтобы замена была атомарной.
func (r *Repository) ReplaceRules(ctx context.Context, profile *domain.AvailabilityProfile) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	for _, table := range []string{"recurring_slots", "specific_date_slots", "break_periods"} {
		query, args, err := psqlbuilder.Delete(table).
			Where(squirrel.Eq{"teacher_id": profile.TeacherID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceRules - build delete query for %s: %v", ErrBuildQuery, table, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: ReplaceRules - clear %s: %v", ErrExecQuery, table, err)
		}
	}

	if _, err := r.insertRecurring(ctx, executor, profile.TeacherID, profile.Recurring); err != nil {
		return err
	}
	if err := r.insertSpecific(ctx, executor, profile.TeacherID, profile.Specific); err != nil {
		return err
	}
	if err := r.insertBreaks(ctx, executor, profile.TeacherID, profile.Breaks); err != nil {
		return err
	}

	query, args, err := psqlbuilder.Update("teacher_availability").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"teacher_id": profile.TeacherID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceRules - build touch query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceRules - touch profile: %v", ErrExecQuery, err)
	}

	return nil
}

// pgUniqueViolation код ошибки PostgreSQL при нарушении уникального ограничения
const pgUniqueViolation = "23505"

// isDuplicateProfile проверяет, что вставка профиля проиграла гонку
// конкурентному первому запросу (нарушение первичного ключа)
func isDuplicateProfile(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}

func (r *Repository) loadRecurring(ctx context.Context, executor DBExecutor, teacherID int64) ([]domain.RecurringSlot, error) {
	query, args, err := psqlbuilder.Select("id", "day_of_week", "start_time", "end_time").
		From("recurring_slots").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("day_of_week ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: loadRecurring - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadRecurring - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]domain.RecurringSlot, 0)
	for rows.Next() {
		var slot domain.RecurringSlot
		var dayOfWeek int
		if err := rows.Scan(&slot.ID, &dayOfWeek, &slot.StartTime, &slot.EndTime); err != nil {
			return nil, fmt.Errorf("%w: loadRecurring - scan row: %v", ErrScanRow, err)
		}
		slot.DayOfWeek = time.Weekday(dayOfWeek)
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadRecurring - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

func (r *Repository) loadSpecific(ctx context.Context, executor DBExecutor, teacherID int64) ([]domain.SpecificDateSlot, error) {
	query, args, err := psqlbuilder.Select("id", "slot_date", "start_time", "end_time").
		From("specific_date_slots").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("slot_date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: loadSpecific - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadSpecific - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]domain.SpecificDateSlot, 0)
	for rows.Next() {
		var slot domain.SpecificDateSlot
		if err := rows.Scan(&slot.ID, &slot.Date, &slot.StartTime, &slot.EndTime); err != nil {
			return nil, fmt.Errorf("%w: loadSpecific - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadSpecific - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

func (r *Repository) loadBreaks(ctx context.Context, executor DBExecutor, teacherID int64) ([]domain.BreakPeriod, error) {
	query, args, err := psqlbuilder.Select("id", "start_date", "end_date", "reason", "kind").
		From("break_periods").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("start_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	periods := make([]domain.BreakPeriod, 0)
	for rows.Next() {
		var period domain.BreakPeriod
		var kind string
		if err := rows.Scan(&period.ID, &period.StartDate, &period.EndDate, &period.Reason, &kind); err != nil {
			return nil, fmt.Errorf("%w: loadBreaks - scan row: %v", ErrScanRow, err)
		}
		period.Kind = domain.BreakKind(kind)
		periods = append(periods, period)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - rows error: %v", ErrScanRow, err)
	}

	return periods, nil
}

func (r *Repository) insertRecurring(ctx context.Context, executor DBExecutor, teacherID int64, slots []domain.RecurringSlot) ([]domain.RecurringSlot, error) {
	if len(slots) == 0 {
		return []domain.RecurringSlot{}, nil
	}

	builder := psqlbuilder.Insert("recurring_slots").
		Columns("teacher_id", "day_of_week", "start_time", "end_time")
	for _, slot := range slots {
		builder = builder.Values(teacherID, int(slot.DayOfWeek), slot.StartTime, slot.EndTime)
	}

	query, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: insertRecurring - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: insertRecurring - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	inserted := make([]domain.RecurringSlot, 0, len(slots))
	for i := 0; rows.Next(); i++ {
		slot := slots[i]
		if err := rows.Scan(&slot.ID); err != nil {
			return nil, fmt.Errorf("%w: insertRecurring - scan id: %v", ErrScanRow, err)
		}
		inserted = append(inserted, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: insertRecurring - rows error: %v", ErrScanRow, err)
	}

	return inserted, nil
}

func (r *Repository) insertSpecific(ctx context.Context, executor DBExecutor, teacherID int64, slots []domain.SpecificDateSlot) error {
	if len(slots) == 0 {
		return nil
	}

	builder := psqlbuilder.Insert("specific_date_slots").
		Columns("teacher_id", "slot_date", "start_time", "end_time")
	for _, slot := range slots {
		builder = builder.Values(teacherID, slot.Date, slot.StartTime, slot.EndTime)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertSpecific - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertSpecific - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) insertBreaks(ctx context.Context, executor DBExecutor, teacherID int64, periods []domain.BreakPeriod) error {
	if len(periods) == 0 {
		return nil
	}

	builder := psqlbuilder.Insert("break_periods").
		Columns("teacher_id", "start_date", "end_date", "reason", "kind")
	for _, period := range periods {
		builder = builder.Values(teacherID, period.StartDate, period.EndDate, period.Reason, string(period.Kind))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertBreaks - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertBreaks - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
