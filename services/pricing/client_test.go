package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		switch r.URL.Path {
		case "/locations/custom/500072":
			_, _ = w.Write([]byte(`[{"category":"Cleaning","subcategory":"Deep","servicename":"Sofa Cleaning","price":499}]`))
		case "/locations/district/Rangareddy District":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", srv.Client())

	recs, err := c.Custom(context.Background(), "500072")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Sofa Cleaning", recs[0].ServiceName)
	assert.Equal(t, 499.0, recs[0].Price)

	_, err = c.District(context.Background(), "Rangareddy District")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.District(context.Background(), "Other")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Status)

	assert.Equal(t, "/locations/district/Rangareddy%20District", paths[1])
}
