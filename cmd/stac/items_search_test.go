package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	stacclient "github.com/robert-malhotra/go-stac-client/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestSearchItemsActionSendsCQL2Filter(t *testing.T) {
	var captured stacclient.SearchParams

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"FeatureCollection","features":[],"links":[]}`))
	}))
	defer server.Close()

	root := &cli.Command{
		Name:  "stac-cli",
		Flags: []cli.Flag{baseURLFlag, timeoutFlag},
		Commands: []*cli.Command{
			newItemsCommand(),
		},
	}

	err := root.Run(context.Background(), []string{
		"stac-cli", "--url", server.URL,
		"items", "search", "sentinel-2",
		"--filter", `eo:cloud_cover < 20`,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sentinel-2"}, captured.Collections)
	assert.Equal(t, `("eo:cloud_cover" < 20)`, captured.FilterText)
	assert.Equal(t, "cql2-text", captured.FilterLang)
}

func TestSearchItemsActionWithoutFilter(t *testing.T) {
	var captured stacclient.SearchParams

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"FeatureCollection","features":[],"links":[]}`))
	}))
	defer server.Close()

	root := &cli.Command{
		Name:  "stac-cli",
		Flags: []cli.Flag{baseURLFlag, timeoutFlag},
		Commands: []*cli.Command{
			newItemsCommand(),
		},
	}

	err := root.Run(context.Background(), []string{
		"stac-cli", "--url", server.URL,
		"items", "search", "sentinel-2",
	})
	require.NoError(t, err)

	assert.Empty(t, captured.FilterText)
	assert.Empty(t, captured.FilterLang)
}
