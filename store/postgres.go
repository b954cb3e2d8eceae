package store

import (
	"context"
	"time"

	"ClinicDesk/models"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresDriver stores each collection as one jsonb row of
// record_collections.
type PostgresDriver struct {
	db *gorm.DB
}

// NewPostgresDriver expects the record_collections table to be migrated.
func NewPostgresDriver(db *gorm.DB) *PostgresDriver {
	return &PostgresDriver{db: db}
}

func (d *PostgresDriver) Load(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	var row models.RecordCollection
	err := d.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emptyArray, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", name)
	}
	data, err := normalize(row.Records)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	return data, nil
}

func (d *PostgresDriver) Save(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	row := models.RecordCollection{Name: name, Records: datatypes.JSON(data), UpdatedAt: time.Now()}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"records", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return errors.Wrapf(err, "failed to save %s", name)
	}
	return nil
}

// Update makes sure the row exists, then holds a row lock for the duration of
// fn so concurrent writers of the same collection queue up.
func (d *PostgresDriver) Update(ctx context.Context, name string, fn UpdateFunc) error {
	if err := checkName(name); err != nil {
		return err
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.RecordCollection{Name: name, Records: datatypes.JSON(emptyArray), UpdatedAt: time.Now()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return errors.Wrapf(err, "failed to prepare %s", name)
		}

		var row models.RecordCollection
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).Take(&row).Error; err != nil {
			return errors.Wrapf(err, "failed to lock %s", name)
		}
		current, err := normalize(row.Records)
		if err != nil {
			return errors.Wrapf(err, "failed to parse %s", name)
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		err = tx.Model(&models.RecordCollection{}).Where("name = ?", name).Updates(map[string]interface{}{
			"records":    datatypes.JSON(next),
			"updated_at": time.Now(),
		}).Error
		if err != nil {
			return errors.Wrapf(err, "failed to update %s", name)
		}
		return nil
	})
}

func (d *PostgresDriver) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	return sqlDB.Close()
}
