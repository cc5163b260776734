package repository

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
)

const (
	// sessionSlotID is the fixed primary key of the single session row.
	sessionSlotID = 1

	keyLastAccessed = "last_accessed"
)

// sessionSlot is the single-row table holding the active wallet session
// as a JSON blob. Storing the whole record as one payload keeps writes
// atomic and lets a corrupt or schema-drifted blob be discarded wholesale.
type sessionSlot struct {
	ID        int       `gorm:"column:id;primaryKey"`
	Payload   string    `gorm:"column:payload"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionSlot) TableName() string {
	return "session_slot"
}

// kvEntry is the generic key/value area: the last-accessed hint, the
// telegram chat binding and similar small client state.
type kvEntry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

type SqliteDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

// NewSqliteDB opens (creating if needed) the client database under dataDir.
func NewSqliteDB(dataDir string, logger *logger.Logger) (models.Repository, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %s", err)
	}

	// Configure GORM logger to suppress "record not found" messages
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	dsn := filepath.Join(dataDir, "claviger.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %s", dsn, err)
	}

	if err := db.AutoMigrate(&sessionSlot{}, &kvEntry{}, &models.StakeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully opened client database at ", dsn)
	return &SqliteDB{Conn: db, logger: logger}, nil
}

func (db *SqliteDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

// GetSession reads the session slot. A missing row means no session; a
// row whose payload does not decode or validate is discarded the same
// way, so a bad record can never lock the user out of the access flows.
func (db *SqliteDB) GetSession() (*models.WalletSession, error) {
	var slot sessionSlot
	if err := db.Conn.Where("id = ?", sessionSlotID).First(&slot).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session slot: %s", err)
	}

	var session models.WalletSession
	if err := json.Unmarshal([]byte(slot.Payload), &session); err != nil {
		db.logger.Warn("Discarding undecodable session slot: ", err)
		return nil, nil
	}
	if err := session.Validate(); err != nil {
		db.logger.Warn("Discarding invalid session slot: ", err)
		return nil, nil
	}
	return &session, nil
}

func (db *SqliteDB) SetSession(session *models.WalletSession) error {
	if session == nil {
		return fmt.Errorf("cannot store a nil session")
	}
	if err := session.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid session: %s", err)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %s", err)
	}
	slot := sessionSlot{ID: sessionSlotID, Payload: string(payload), UpdatedAt: time.Now()}
	if err := db.Conn.Save(&slot).Error; err != nil {
		return fmt.Errorf("failed to write session slot: %s", err)
	}
	return nil
}

func (db *SqliteDB) ClearSession() error {
	if err := db.Conn.Where("id = ?", sessionSlotID).Delete(&sessionSlot{}).Error; err != nil {
		return fmt.Errorf("failed to clear session slot: %s", err)
	}
	return nil
}

func (db *SqliteDB) GetLastAccessed() (string, error) {
	return db.GetValue(keyLastAccessed)
}

func (db *SqliteDB) SetLastAccessed(address string) error {
	return db.SetValue(keyLastAccessed, address)
}

func (db *SqliteDB) GetValue(key string) (string, error) {
	var entry kvEntry
	if err := db.Conn.Where("key = ?", key).First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to read value %q: %s", key, err)
	}
	return entry.Value, nil
}

func (db *SqliteDB) SetValue(key, value string) error {
	entry := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := db.Conn.Save(&entry).Error; err != nil {
		return fmt.Errorf("failed to write value %q: %s", key, err)
	}
	return nil
}

func (db *SqliteDB) AddStake(stake *models.StakeRecord) error {
	if err := db.Conn.Create(stake).Error; err != nil {
		return fmt.Errorf("failed to create stake record: %s", err)
	}
	return nil
}

func (db *SqliteDB) GetStake(id string) (*models.StakeRecord, error) {
	var stake models.StakeRecord
	if err := db.Conn.Where("id = ?", id).First(&stake).Error; err != nil {
		return nil, fmt.Errorf("failed to get stake record: %s", err)
	}
	return &stake, nil
}

func (db *SqliteDB) ListStakes(stakerAddress string) ([]*models.StakeRecord, error) {
	var stakes []*models.StakeRecord
	if err := db.Conn.Where("staker_address = ?", stakerAddress).Order("start_date DESC").Find(&stakes).Error; err != nil {
		return nil, fmt.Errorf("failed to list stake records: %s", err)
	}
	return stakes, nil
}

func (db *SqliteDB) UpdateStake(stake *models.StakeRecord) error {
	if err := db.Conn.Save(stake).Error; err != nil {
		return fmt.Errorf("failed to update stake record: %s", err)
	}
	return nil
}
