package repository

import (
	"time"

	"ecobazaarx/internal/models"
)

// userRecord conserva el hash de la contraseña, que models.User no
// serializa en JSON
type userRecord struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"password_hash"`
	Role         models.Role       `json:"role"`
	Status       models.UserStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

type snapshotRecord struct {
	Users     []userRecord     `json:"users"`
	Products  []models.Product `json:"products"`
	Orders    []models.Order   `json:"orders"`
	Sequences models.Sequences `json:"sequences"`
	SavedAt   time.Time        `json:"saved_at"`
}

func toRecord(snap *models.Snapshot) snapshotRecord {
	rec := snapshotRecord{
		Products:  snap.Products,
		Orders:    snap.Orders,
		Sequences: snap.Sequences,
		SavedAt:   time.Now().UTC(),
	}
	for _, u := range snap.Users {
		rec.Users = append(rec.Users, userRecord(u))
	}
	return rec
}

func fromRecord(rec snapshotRecord) *models.Snapshot {
	snap := &models.Snapshot{
		Products:  rec.Products,
		Orders:    rec.Orders,
		Sequences: rec.Sequences,
	}
	for _, u := range rec.Users {
		snap.Users = append(snap.Users, models.User(u))
	}
	return snap
}
