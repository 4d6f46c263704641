package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/suxatcode/knowledge-graph-view/db"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type KnowledgeBase struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Entity struct {
	gorm.Model
	KnowledgeBaseID string        `gorm:"index:entityPerKnowledgeBase,unique;not null"`
	KnowledgeBase   KnowledgeBase `gorm:"constraint:OnDelete:CASCADE;not null"`
	// EntityID is the id edges refer to, unique per knowledge base. Empty
	// falls back to the row id.
	EntityID    string `gorm:"index:entityPerKnowledgeBase,unique"`
	Name        string `gorm:"not null"`
	Type        string
	Description string
	PageRank    *float64
	Source      Strings `gorm:"type:jsonb;default:'[]';not null"`
}

type Relation struct {
	gorm.Model
	KnowledgeBaseID string        `gorm:"index;not null"`
	KnowledgeBase   KnowledgeBase `gorm:"constraint:OnDelete:CASCADE;not null"`
	SourceID        string        `gorm:"not null"`
	TargetID        string        `gorm:"not null"`
	Relation        string
	Description     string
	Weight          float64 `gorm:"default:2"`
}

// Strings is a jsonb encoded list of strings.
type Strings []string

func (s *Strings) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("cannot scan %T into Strings", value)
	}
	return json.Unmarshal(data, (*[]string)(s))
}

func (s Strings) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	return string(data), err
}

func NewPostgresDB(conf db.Config) (*PostgresDB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		DSN: conf.PostgresDSN(),
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	pg := &PostgresDB{db: gdb}
	return pg, pg.init()
}

type PostgresDB struct {
	db *gorm.DB
}

func (pg *PostgresDB) init() error {
	return pg.db.AutoMigrate(&KnowledgeBase{}, &Entity{}, &Relation{})
}

func (pg *PostgresDB) Close() error {
	sqlDB, err := pg.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (pg *PostgresDB) Graph(ctx context.Context, kbID string) (*model.Snapshot, error) {
	tx := pg.db.WithContext(ctx)
	if err := tx.First(&KnowledgeBase{}, "id = ?", kbID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(db.ErrGraphNotFound, "knowledge base %q", kbID)
		}
		return nil, errors.Wrapf(err, "knowledge base %q", kbID)
	}
	entities := []Entity{}
	if err := tx.Where("knowledge_base_id = ?", kbID).Order("id").Find(&entities).Error; err != nil {
		return nil, errors.Wrapf(err, "entities of %q", kbID)
	}
	relations := []Relation{}
	if err := tx.Where("knowledge_base_id = ?", kbID).Order("id").Find(&relations).Error; err != nil {
		return nil, errors.Wrapf(err, "relations of %q", kbID)
	}
	return ConvertToModel(entities, relations), nil
}

func (pg *PostgresDB) KnowledgeBases(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := pg.db.WithContext(ctx).Model(&KnowledgeBase{}).Order("id").Pluck("id", &ids).Error
	return ids, errors.Wrap(err, "list knowledge bases")
}

// Import replaces the content of knowledge base kbID with s, creating the
// knowledge base if needed.
func (pg *PostgresDB) Import(ctx context.Context, kbID, name string, s *model.Snapshot) error {
	entities, relations := ConvertToDB(kbID, s)
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kb := KnowledgeBase{ID: kbID, Name: name}
		if err := tx.Save(&kb).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("knowledge_base_id = ?", kbID).Delete(&Relation{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("knowledge_base_id = ?", kbID).Delete(&Entity{}).Error; err != nil {
			return err
		}
		if len(entities) > 0 {
			if err := tx.Omit("KnowledgeBase").Create(&entities).Error; err != nil {
				return err
			}
		}
		if len(relations) > 0 {
			if err := tx.Omit("KnowledgeBase").Create(&relations).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
