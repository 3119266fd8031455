package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/syncreq/config"
)

func TestParse(t *testing.T) {
	f, err := config.Parse([]byte(`{"requests": {"a": {"method": "GET", "url": "http://{{h}}/"}}}`), "r.json")
	require.NoError(t, err)

	d, err := f.Request("a", map[string]string{"h": "localhost"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/", d.URL)

	_, err = config.Parse([]byte(`{"requests": {}}`), "r.json")
	var errs config.ValidationErrors
	assert.ErrorAs(t, err, &errs)
}
