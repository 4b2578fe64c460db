package postgres

import (
	"context"

	communicationDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/communication"
	customerDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/customer"
	leadDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/lead"
	"gorm.io/gorm"
)

type Purger struct {
	db *gorm.DB
}

func NewPurger(db *gorm.DB) *Purger {
	return &Purger{db: db}
}

// Purge deletes communications first, then customers, then leads.
func (p *Purger) Purge(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 3)
	tables := []struct {
		name  string
		model interface{}
	}{
		{"communications", &communicationDatamodel.Communication{}},
		{"customers", &customerDatamodel.Customer{}},
		{"leads", &leadDatamodel.Lead{}},
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, t := range tables {
			result := all.Delete(t.model)
			if result.Error != nil {
				return result.Error
			}
			counts[t.name] = result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
