package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type overlayQuery struct {
	Start  string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	Anchor string `query:"anchor" default:"last" validate:"required,oneof=first last"`
}

func bindQuery(t *testing.T, target string, req interface{}) interface{} {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	return ReadAndValidateRequest(c, req)
}

func TestReadAndValidateRequest(t *testing.T) {
	var ok overlayQuery
	require.Nil(t, bindQuery(t, "/overlay?start=2024-01-02", &ok))
	assert.Equal(t, "last", ok.Anchor)

	var bad overlayQuery
	verr := bindQuery(t, "/overlay?start=02/01/2024&anchor=middle", &bad)
	errs, isList := verr.([]ValidationError)
	require.True(t, isList)
	require.Len(t, errs, 2)

	assert.Equal(t, "ERR_DATETIME", errs[0].Code)
	assert.Equal(t, "start", errs[0].Field)
	assert.Equal(t, "start must be a date in YYYY-MM-DD form", errs[0].Message)

	assert.Equal(t, "ERR_ONEOF", errs[1].Code)
	assert.Equal(t, "anchor", errs[1].Field)
	assert.Equal(t, []string{"first", "last"}, errs[1].Params["options"])
}
