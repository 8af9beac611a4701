package repository

import (
	"context"

	"studyhub/server/internal/model"
)

// FlashcardUpdate carries the updatable fields of a flashcard. Nil
// fields are left unchanged. The owner id is deliberately not part of
// the set.
type FlashcardUpdate struct {
	Subject  *string
	Front    *string
	Back     *string
	Mastered *bool
}

func (s *Store) ListFlashcards(ctx context.Context, ownerID string) ([]model.Flashcard, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, subject, front, back, mastered, created_at
		FROM flashcards
		WHERE owner_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []model.Flashcard{}
	for rows.Next() {
		var card model.Flashcard
		if err := rows.Scan(&card.ID, &card.OwnerID, &card.Subject, &card.Front, &card.Back, &card.Mastered, &card.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *Store) CreateFlashcard(ctx context.Context, card model.Flashcard) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO flashcards (id, owner_id, subject, front, back, mastered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, card.ID, card.OwnerID, card.Subject, card.Front, card.Back, card.Mastered, card.CreatedAt)
	return err
}

// UpdateFlashcard applies a partial update scoped to the owner. A
// record under a different owner scans as pgx.ErrNoRows, same as a
// missing one.
func (s *Store) UpdateFlashcard(ctx context.Context, ownerID, cardID string, update FlashcardUpdate) (model.Flashcard, error) {
	var card model.Flashcard
	row := s.pool.QueryRow(ctx, `
		UPDATE flashcards
		SET subject  = COALESCE($3, subject),
		    front    = COALESCE($4, front),
		    back     = COALESCE($5, back),
		    mastered = COALESCE($6, mastered)
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, subject, front, back, mastered, created_at
	`, cardID, ownerID, update.Subject, update.Front, update.Back, update.Mastered)
	err := row.Scan(&card.ID, &card.OwnerID, &card.Subject, &card.Front, &card.Back, &card.Mastered, &card.CreatedAt)
	return card, err
}

func (s *Store) DeleteFlashcard(ctx context.Context, ownerID, cardID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM flashcards
		WHERE id = $1 AND owner_id = $2
	`, cardID, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListNotes(ctx context.Context, ownerID string) ([]model.Note, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, subject, title, content, created_at
		FROM notes
		WHERE owner_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var note model.Note
		if err := rows.Scan(&note.ID, &note.OwnerID, &note.Subject, &note.Title, &note.Content, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *Store) CreateNote(ctx context.Context, note model.Note) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notes (id, owner_id, subject, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, note.ID, note.OwnerID, note.Subject, note.Title, note.Content, note.CreatedAt)
	return err
}

func (s *Store) DeleteNote(ctx context.Context, ownerID, noteID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM notes
		WHERE id = $1 AND owner_id = $2
	`, noteID, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
