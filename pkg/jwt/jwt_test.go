package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Prebatch-api/pkg/jwt"
)

func TestGenerateYParse_IdaYVuelta(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cret", "u-1", "operador1", "operador", "prebatch-test", 5)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "operador1", claims.Username)
	assert.Equal(t, "operador", claims.Role)
	assert.Equal(t, "prebatch-test", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cret", "u-1", "operador1", "operador", "prebatch-test", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u-1", "operador1", "operador", "x", 5)
	assert.Error(t, err)
}
