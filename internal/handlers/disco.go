package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/discoteca/internal/apperrors"
	"github.com/nkiryanov/discoteca/internal/handlers/render"
	"github.com/nkiryanov/discoteca/internal/logger"
	"github.com/nkiryanov/discoteca/internal/models"
)

// Multipart form field with cover image
const imageFormField = "imagem"

const discoFieldsMessage = "usuarios_id, artista, genero, album, preco, url_imagem, descricao e faixas são obrigatórios; usuarios_id e preco devem ser maiores ou iguais a 1"

type discoResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"usuarios_id"`
	Artist      string    `json:"artista"`
	Genre       string    `json:"genero"`
	Album       string    `json:"album"`
	Price       float64   `json:"preco"`
	ImageURL    string    `json:"url_imagem"`
	Description string    `json:"descricao"`
	Tracks      string    `json:"faixas"`
	CreatedAt   time.Time `json:"created_at"`
}

func newDiscoResponse(d models.Disco) discoResponse {
	price, _ := d.Price.Float64()
	return discoResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		Artist:      d.Artist,
		Genre:       d.Genre,
		Album:       d.Album,
		Price:       price,
		ImageURL:    d.ImageURL,
		Description: d.Description,
		Tracks:      d.Tracks,
		CreatedAt:   d.CreatedAt,
	}
}

// Full disco body for create and replace
type discoRequest struct {
	UserID      int64            `json:"usuarios_id" validate:"required,gte=1"`
	Artist      string           `json:"artista" validate:"required"`
	Genre       string           `json:"genero" validate:"required"`
	Album       string           `json:"album" validate:"required"`
	Price       *decimal.Decimal `json:"preco" validate:"required,gte=1"`
	ImageURL    string           `json:"url_imagem" validate:"required"`
	Description string           `json:"descricao" validate:"required"`
	Tracks      string           `json:"faixas" validate:"required"`
}

func (r discoRequest) toModel(id int64) models.Disco {
	return models.Disco{
		ID:          id,
		UserID:      r.UserID,
		Artist:      r.Artist,
		Genre:       r.Genre,
		Album:       r.Album,
		Price:       *r.Price,
		ImageURL:    r.ImageURL,
		Description: r.Description,
		Tracks:      r.Tracks,
	}
}

// Partial disco body. Absent fields are kept, present ones validated as on create
type discoPatchRequest struct {
	UserID      *int64           `json:"usuarios_id" validate:"omitnil,gte=1"`
	Artist      *string          `json:"artista" validate:"omitnil,min=1"`
	Genre       *string          `json:"genero" validate:"omitnil,min=1"`
	Album       *string          `json:"album" validate:"omitnil,min=1"`
	Price       *decimal.Decimal `json:"preco" validate:"omitnil,gte=1"`
	ImageURL    *string          `json:"url_imagem" validate:"omitnil,min=1"`
	Description *string          `json:"descricao" validate:"omitnil,min=1"`
	Tracks      *string          `json:"faixas" validate:"omitnil,min=1"`
}

func (r discoPatchRequest) toModel() models.DiscoPatch {
	return models.DiscoPatch{
		UserID:      r.UserID,
		Artist:      r.Artist,
		Genre:       r.Genre,
		Album:       r.Album,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Description: r.Description,
		Tracks:      r.Tracks,
	}
}

// Parse {id} path value. Writes 400 and returns false if it is not positive integer
func discoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		render.ServiceError(w, "id inválido", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// Render result of single disco operation
func renderDisco(w http.ResponseWriter, l logger.Logger, d models.Disco, err error, code int) {
	switch {
	case err == nil:
		render.JSONWithStatus(w, newDiscoResponse(d), code)
	case errors.Is(err, apperrors.ErrDiscoNotFound):
		render.ServiceError(w, "não encontrado", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "usuarios_id não existe", http.StatusBadRequest)
	default:
		l.Error("disco operation failed", "error", err)
		render.InternalError(w)
	}
}

func handleListDiscos(ds discoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		discos, err := ds.List(r.Context())
		if err != nil {
			l.Error("list discos failed", "error", err)
			render.InternalError(w)
			return
		}

		res := make([]discoResponse, 0, len(discos))
		for _, d := range discos {
			res = append(res, newDiscoResponse(d))
		}
		render.JSON(w, res)
	})
}

func handleGetDisco(ds discoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := discoID(w, r)
		if !ok {
			return
		}

		d, err := ds.Get(r.Context(), id)
		renderDisco(w, l, d, err, http.StatusOK)
	})
}

func handleCreateDisco(ds discoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[discoRequest](w, r, discoFieldsMessage)
		if err != nil {
			return
		}

		d, err := ds.Create(r.Context(), data.toModel(0))
		renderDisco(w, l, d, err, http.StatusCreated)
	})
}

func handleReplaceDisco(ds discoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := discoID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[discoRequest](w, r, discoFieldsMessage)
		if err != nil {
			return
		}

		d, err := ds.Replace(r.Context(), data.toModel(id))
		renderDisco(w, l, d, err, http.StatusOK)
	})
}

func handlePatchDisco(ds discoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := discoID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[discoPatchRequest](w, r, "")
		if err != nil {
			return
		}

		d, err := ds.Patch(r.Context(), id, data.toModel())
		if errors.Is(err, apperrors.ErrNothingToUpdate) {
			render.ServiceError(w, "é necessário enviar pelo menos um dado para atualizar", http.StatusBadRequest)
			return
		}
		renderDisco(w, l, d, err, http.StatusOK)
	})
}

func handleDeleteDisco(ds discoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := discoID(w, r)
		if !ok {
			return
		}

		err := ds.Delete(r.Context(), id)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrDiscoNotFound):
			render.ServiceError(w, "não encontrado", http.StatusNotFound)
		default:
			l.Error("delete disco failed", "error", err, "disco_id", id)
			render.InternalError(w)
		}
	})
}

// Content type is sniffed from file itself, client provided one is ignored
func handleUploadDiscoImage(ds discoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ds.ImagesEnabled() {
			render.ServiceError(w, "armazenamento de imagens não configurado", http.StatusServiceUnavailable)
			return
		}

		id, ok := discoID(w, r)
		if !ok {
			return
		}

		maxBytes := ds.ImageMaxBytes()
		// Room for multipart boundaries and headers
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				render.ServiceError(w, "imagem muito grande", http.StatusRequestEntityTooLarge)
				return
			}
			render.ServiceError(w, "envie a imagem no campo multipart 'imagem'", http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll() // nolint:errcheck

		file, header, err := r.FormFile(imageFormField)
		if err != nil {
			render.ServiceError(w, "envie a imagem no campo multipart 'imagem'", http.StatusBadRequest)
			return
		}
		defer file.Close() // nolint:errcheck

		head := make([]byte, 512)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			l.Error("read uploaded image failed", "error", err)
			render.InternalError(w)
			return
		}
		head = head[:n]
		contentType := http.DetectContentType(head)

		d, err := ds.UploadImage(r.Context(), id, io.MultiReader(bytes.NewReader(head), file), header.Size, contentType)
		if errors.Is(err, apperrors.ErrImageInvalid) {
			msg := fmt.Sprintf("imagem deve ser jpeg, png ou webp de até %d bytes", maxBytes)
			render.ServiceError(w, msg, http.StatusBadRequest)
			return
		}
		renderDisco(w, l, d, err, http.StatusOK)
	})
}
