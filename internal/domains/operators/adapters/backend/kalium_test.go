package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laboquimica/kalium-review/internal/clients/http/kalium"
	"github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	"github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

func newAuthenticator(t *testing.T, handler http.HandlerFunc) *Authenticator {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/usuarios/login", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client, err := kalium.NewClient(server.URL+"/api", kalium.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return NewAuthenticator(client)
}

func TestAuthenticate(t *testing.T) {
	auth := newAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ana@kalium.test", body["correo"])
		require.Equal(t, "secreto", body["contrasena"])
		_, _ = io.WriteString(w, `{"idUsuario":1,"nombre":"Ana","apellido":"Rojas","correo":"ana@kalium.test","rol":{"idRol":1,"nombreRol":"ADMINISTRADOR"}}`)
	})

	op, err := auth.Authenticate(context.Background(), domain.Credentials{Email: "ana@kalium.test", Password: "secreto"})
	require.NoError(t, err)
	require.Equal(t, &domain.Operator{ID: 1, FirstName: "Ana", LastName: "Rojas", Email: "ana@kalium.test", Role: "ADMINISTRADOR"}, op)
	require.True(t, op.IsAdmin())
}

func TestAuthenticate_Refused(t *testing.T) {
	auth := newAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "Credenciales inválidas")
	})

	_, err := auth.Authenticate(context.Background(), domain.Credentials{Email: "ana@kalium.test", Password: "x"})
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestAuthenticate_ServerError(t *testing.T) {
	auth := newAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "Error en el inicio de sesión: timeout")
	})

	_, err := auth.Authenticate(context.Background(), domain.Credentials{Email: "ana@kalium.test", Password: "x"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ports.ErrInvalidCredentials)
}
