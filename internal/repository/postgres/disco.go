package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/discoteca/internal/apperrors"
	"github.com/nkiryanov/discoteca/internal/models"
)

type DiscoRepo struct {
	DB DBTX
}

const discoColumns = `id, created_at, usuarios_id, artista, genero, album, preco, url_imagem, descricao, faixas`

const listDiscos = `-- name: ListDiscos
SELECT ` + discoColumns + ` FROM discos
ORDER BY id DESC
`

func (r *DiscoRepo) ListDiscos(ctx context.Context) ([]models.Disco, error) {
	rows, _ := r.DB.Query(ctx, listDiscos)
	discos, err := pgx.CollectRows(rows, rowToDisco)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return discos, nil
}

const getDisco = `-- name: GetDisco
SELECT ` + discoColumns + ` FROM discos
WHERE id = $1
`

func (r *DiscoRepo) GetDisco(ctx context.Context, id int64) (models.Disco, error) {
	rows, _ := r.DB.Query(ctx, getDisco, id)
	return collectDisco(rows)
}

const createDisco = `-- name: CreateDisco
INSERT INTO discos (usuarios_id, artista, genero, album, preco, url_imagem, descricao, faixas)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + discoColumns

func (r *DiscoRepo) CreateDisco(ctx context.Context, d models.Disco) (models.Disco, error) {
	rows, _ := r.DB.Query(ctx, createDisco,
		d.UserID, d.Artist, d.Genre, d.Album, d.Price, d.ImageURL, d.Description, d.Tracks,
	)
	return collectDisco(rows)
}

const replaceDisco = `-- name: ReplaceDisco
UPDATE discos SET
	usuarios_id = $1,
	artista = $2,
	genero = $3,
	album = $4,
	preco = $5,
	url_imagem = $6,
	descricao = $7,
	faixas = $8
WHERE id = $9
RETURNING ` + discoColumns

func (r *DiscoRepo) ReplaceDisco(ctx context.Context, d models.Disco) (models.Disco, error) {
	rows, _ := r.DB.Query(ctx, replaceDisco,
		d.UserID, d.Artist, d.Genre, d.Album, d.Price, d.ImageURL, d.Description, d.Tracks, d.ID,
	)
	return collectDisco(rows)
}

// Every column falls back to its own stored value when the patch field is nil
const patchDisco = `-- name: PatchDisco
UPDATE discos SET
	usuarios_id = COALESCE($1, usuarios_id),
	artista = COALESCE($2, artista),
	genero = COALESCE($3, genero),
	album = COALESCE($4, album),
	preco = COALESCE($5, preco),
	url_imagem = COALESCE($6, url_imagem),
	descricao = COALESCE($7, descricao),
	faixas = COALESCE($8, faixas)
WHERE id = $9
RETURNING ` + discoColumns

func (r *DiscoRepo) PatchDisco(ctx context.Context, id int64, p models.DiscoPatch) (models.Disco, error) {
	rows, _ := r.DB.Query(ctx, patchDisco,
		p.UserID, p.Artist, p.Genre, p.Album, p.Price, p.ImageURL, p.Description, p.Tracks, id,
	)
	return collectDisco(rows)
}

const deleteDisco = `-- name: DeleteDisco
DELETE FROM discos
WHERE id = $1
`

func (r *DiscoRepo) DeleteDisco(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteDisco, id)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrDiscoNotFound
	default:
		return nil
	}
}

func collectDisco(rows pgx.Rows) (models.Disco, error) {
	disco, err := pgx.CollectOneRow(rows, rowToDisco)

	switch {
	case err == nil:
		return disco, nil
	case errors.Is(err, pgx.ErrNoRows):
		return disco, apperrors.ErrDiscoNotFound
	case isForeignKeyViolation(err):
		return disco, apperrors.ErrUserNotFound
	default:
		return disco, fmt.Errorf("db error: %w", err)
	}
}

// Disco references not existed user
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func rowToDisco(row pgx.CollectableRow) (models.Disco, error) {
	var d models.Disco
	err := row.Scan(
		&d.ID, &d.CreatedAt, &d.UserID,
		&d.Artist, &d.Genre, &d.Album, &d.Price, &d.ImageURL, &d.Description, &d.Tracks,
	)
	return d, err
}
