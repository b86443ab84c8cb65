package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/model"
)

func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	const q = `
	INSERT INTO users (email, hashed_password, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id;`
	var newID int
	if err := s.db.QueryRow(q, email, hashedPassword, name).Scan(&newID); err != nil {
		log.Error().Err(err).Msg("CreateUser failed")
		return 0, translate(err, "user", 0)
	}
	return newID, nil
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, email, hashed_password, name, created_at, updated_at
	  FROM users
	 WHERE email = $1;`
	if err := s.db.Get(&u, q, email); err != nil {
		return nil, translate(err, "user", 0)
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, email, hashed_password, name, created_at, updated_at
	  FROM users
	 WHERE id = $1;`
	if err := s.db.Get(&u, q, id); err != nil {
		return nil, translate(err, "user", id)
	}
	return &u, nil
}

func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	const q = `
	UPDATE users
	   SET email = $2, name = $3, updated_at = now()
	 WHERE id = $1;`
	if _, err := s.db.Exec(q, id, email, name); err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("UpdateUserProfile failed")
		return translate(err, "user", id)
	}
	return nil
}
