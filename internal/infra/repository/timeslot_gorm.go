package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/models"
)

type TimeslotGormRepository struct {
	db *gorm.DB
}

func NewTimeslotGormRepository(db *gorm.DB) *TimeslotGormRepository {
	return &TimeslotGormRepository{db: db}
}

// --------------------------------------------------
// Room
// --------------------------------------------------

func (r *TimeslotGormRepository) GetRoom(
	ctx context.Context,
	roomID uint,
) (*models.Room, error) {

	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("room_not_found")
		}
		return nil, err
	}
	return &room, nil
}

// --------------------------------------------------
// Intervals (read)
// --------------------------------------------------

func (r *TimeslotGormRepository) ListIntervals(
	ctx context.Context,
	roomID uint,
) ([]domain.Interval, error) {

	var rows []models.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("start ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return toIntervals(rows), nil
}

func (r *TimeslotGormRepository) GetInterval(
	ctx context.Context,
	roomID uint,
	id uint,
) (domain.Interval, error) {

	var row models.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("id = ? AND room_id = ?", id, roomID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Interval{}, httperr.ErrBusiness("timeslot_not_found")
		}
		return domain.Interval{}, err
	}

	return domain.FromModel(row), nil
}

func (r *TimeslotGormRepository) ListSeries(
	ctx context.Context,
	roomID uint,
	seriesID string,
) ([]domain.Interval, error) {

	var rows []models.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND series_id = ?", roomID, seriesID).
		Order("start ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return toIntervals(rows), nil
}

// --------------------------------------------------
// Intervals (write)
// --------------------------------------------------

// Mutate runs one engine operation in a single transaction. The room row is
// locked FOR UPDATE first, so concurrent mutations on the same room serialize
// across replicas sharing one database, and the conflict scan inside fn sees
// a snapshot no other writer can invalidate. The batch is applied in the same
// transaction: a merge is committed with its trigger or not at all.
func (r *TimeslotGormRepository) Mutate(
	ctx context.Context,
	roomID uint,
	fn func(room *models.Room, existing []domain.Interval) (domain.Batch, error),
) ([]domain.Interval, error) {

	var created []domain.Interval

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var room models.Room
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrBusiness("room_not_found")
			}
			return err
		}

		var rows []models.TimeSlot
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ?", roomID).
			Order("start ASC").
			Find(&rows).Error; err != nil {
			return err
		}

		batch, err := fn(&room, toIntervals(rows))
		if err != nil {
			return err
		}
		if batch.Empty() {
			return nil
		}

		if len(batch.Delete) > 0 {
			if err := tx.
				Where("room_id = ?", roomID).
				Delete(&models.TimeSlot{}, batch.Delete).Error; err != nil {
				return err
			}
		}

		for _, iv := range batch.Update {
			row := iv.ToModel()
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}

		for _, iv := range batch.Create {
			row := iv.ToModel()
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			created = append(created, domain.FromModel(row))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func toIntervals(rows []models.TimeSlot) []domain.Interval {
	intervals := make([]domain.Interval, 0, len(rows))
	for _, row := range rows {
		intervals = append(intervals, domain.FromModel(row))
	}
	return intervals
}

// Compile-time check
var _ domain.Repository = (*TimeslotGormRepository)(nil)
