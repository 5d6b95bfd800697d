package handlers

import (
	"net/http"

	"github.com/nkiryanov/discoteca/internal/handlers/render"
	"github.com/nkiryanov/discoteca/internal/logger"
)

var routes = map[string]string{
	"LISTAR":     "GET /api/discos",
	"MOSTRAR":    "GET /api/discos/{id}",
	"CRIAR":      "POST /api/discos BODY: { usuarios_id, artista, genero, album, preco, url_imagem, descricao, faixas }",
	"SUBSTITUIR": "PUT /api/discos/{id} BODY: { usuarios_id, artista, genero, album, preco, url_imagem, descricao, faixas }",
	"ATUALIZAR":  "PATCH /api/discos/{id} BODY: pelo menos um campo de disco",
	"DELETAR":    "DELETE /api/discos/{id}",
	"IMAGEM":     "PUT /api/discos/{id}/imagem MULTIPART: imagem",
	"LOGIN":      "POST /api/usuarios/login BODY: { email, senha }",
	"REGISTRAR":  "POST /api/usuarios/register BODY: { nome, email, senha }",
	"RENOVAR":    "POST /api/usuarios/refresh COOKIE: refresh_token",
	"SAIR":       "POST /api/usuarios/logout",
	"EU":         "GET /api/usuarios/me",
}

func handleIndex() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, routes)
	})
}

func handleLivez() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// Ready when storage answers
func handleHealthz(hc healthChecker, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hc.Ping(r.Context()); err != nil {
			l.Warn("health check failed", "error", err)
			render.ServiceError(w, "indisponível", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
