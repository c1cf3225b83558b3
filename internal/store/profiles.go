package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tally-dev/tally/internal/model"
)

// CreateProfile inserts a profile and returns it with its ID set.
func (s *Store) CreateProfile(name string) (model.Profile, error) {
	res, err := s.db.Exec("INSERT INTO profiles (name) VALUES (?)", name)
	if err != nil {
		return model.Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Profile{}, fmt.Errorf("profile id: %w", err)
	}
	return model.Profile{ID: id, Name: name}, nil
}

// GetProfile returns a profile by ID.
func (s *Store) GetProfile(id int64) (model.Profile, error) {
	return s.scanProfile(s.db.QueryRow(
		"SELECT id, name, current_year FROM profiles WHERE id = ?", id))
}

// GetProfileByName returns a profile by its unique name.
func (s *Store) GetProfileByName(name string) (model.Profile, error) {
	return s.scanProfile(s.db.QueryRow(
		"SELECT id, name, current_year FROM profiles WHERE name = ?", name))
}

// UpdateProfileYear sets a profile's active fiscal year (0 = calendar year).
func (s *Store) UpdateProfileYear(id int64, year int) error {
	res, err := s.db.Exec("UPDATE profiles SET current_year = ? WHERE id = ?", year, id)
	if err != nil {
		return fmt.Errorf("update profile year: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile year: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanProfile(row *sql.Row) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Name, &p.CurrentYear)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}
