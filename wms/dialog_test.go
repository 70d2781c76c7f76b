package wms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context, url string) ([]LayerOption, error)

func (f fetcherFunc) Layers(ctx context.Context, url string) ([]LayerOption, error) {
	return f(ctx, url)
}

func staticFetcher(options []LayerOption, err error) LayerFetcher {
	return fetcherFunc(func(context.Context, string) ([]LayerOption, error) {
		return options, err
	})
}

func TestDialogLoad(t *testing.T) {
	var d Dialog
	d.SetURL(" https://h/wms ")

	var gotURL string
	fetcher := fetcherFunc(func(_ context.Context, url string) ([]LayerOption, error) {
		gotURL = url
		return loaded, nil
	})

	require.NoError(t, d.Load(context.Background(), fetcher))
	assert.Equal(t, "https://h/wms", gotURL)

	state := d.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Equal(t, loaded, state.Layers)
	assert.Empty(t, state.Selected)
}

func TestDialogMessages(t *testing.T) {
	var d Dialog
	require.NoError(t, d.Load(context.Background(), staticFetcher(loaded, nil)))
	assert.Equal(t, MsgMissingURL, d.State().Error)

	d.SetURL("https://h/wms")
	require.NoError(t, d.Load(context.Background(), staticFetcher(nil, nil)))
	assert.Equal(t, MsgNoLayers, d.State().Error)

	boom := errors.New("dial tcp: connection refused")
	err := d.Load(context.Background(), staticFetcher(nil, boom))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, MsgUnreachable, d.State().Error)
	assert.Empty(t, d.State().Layers)
}

func TestDialogSelectAndConfirm(t *testing.T) {
	var d Dialog
	d.SetURL("https://h/wms")
	require.NoError(t, d.Load(context.Background(), staticFetcher(loaded, nil)))

	d.SelectAll()
	assert.Equal(t, []string{"a", "b", "c"}, d.State().Selected)

	d.SelectNone()
	assert.Empty(t, d.State().Selected)

	d.Toggle("b")
	assert.Equal(t, []ActiveLayer{{ID: "https://h/wms::b", URL: "https://h/wms", LayerName: "b", Title: "b"}}, d.Confirm())
}

func TestDialogReloadClearsSelection(t *testing.T) {
	var d Dialog
	d.SetURL("https://h/wms")
	require.NoError(t, d.Load(context.Background(), staticFetcher(loaded, nil)))
	d.SelectAll()

	require.NoError(t, d.Load(context.Background(), staticFetcher(loaded[:1], nil)))
	assert.Empty(t, d.State().Selected)
	assert.Len(t, d.State().Layers, 1)
}

func TestDialogRejectsOverlappingLoads(t *testing.T) {
	var d Dialog
	d.SetURL("https://h/wms")

	started := make(chan struct{})
	release := make(chan struct{})
	slow := fetcherFunc(func(context.Context, string) ([]LayerOption, error) {
		close(started)
		<-release
		return loaded, nil
	})

	done := make(chan error)
	go func() { done <- d.Load(context.Background(), slow) }()
	<-started

	assert.True(t, d.State().Loading)
	assert.ErrorIs(t, d.Load(context.Background(), staticFetcher(loaded, nil)), ErrLoadInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, loaded, d.State().Layers)
}

func TestDialogDiscardsResponseAfterClose(t *testing.T) {
	var d Dialog
	d.SetURL("https://h/wms")

	started := make(chan struct{})
	release := make(chan struct{})
	slow := fetcherFunc(func(context.Context, string) ([]LayerOption, error) {
		close(started)
		<-release
		return loaded, nil
	})

	done := make(chan error)
	go func() { done <- d.Load(context.Background(), slow) }()
	<-started

	d.Close()
	close(release)
	assert.ErrorIs(t, <-done, ErrStaleResponse)

	state := d.State()
	assert.Empty(t, state.URL)
	assert.Empty(t, state.Layers)
	assert.False(t, state.Loading)
}
