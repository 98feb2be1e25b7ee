package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{"items":[
	{"title":"Babylon is live","link":"https://radixdlt.com/blog/babylon","image":"https://img.example/b.png","source":"Radix Blog","date":"2023-09-28T12:00:00Z","description":"<p>The <b>Babylon</b> upgrade shipped.</p>"},
	{"title":"","link":"https://example.com/untitled"},
	{"title":"Bad link","link":"javascript:alert(1)"},
	{"title":"Second","link":"http://example.com/2","image":"data:image/png;base64,xx","date":"Mon, 02 Jan 2006 15:04:05 -0700"},
	{"title":"Third","link":"https://example.com/3","date":"someday"}
]}`

func TestParseResponse(t *testing.T) {
	items, err := ParseResponse([]byte(sampleFeed), 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Babylon is live", items[0].Title)
	assert.Equal(t, "The Babylon upgrade shipped.", items[0].Description)
	assert.Equal(t, "Radix Blog", items[0].Source)
	assert.Equal(t, 2023, items[0].Date.Year())

	assert.Equal(t, "Second", items[1].Title)
	assert.Empty(t, items[1].Image)
	assert.Equal(t, 2006, items[1].Date.Year())

	assert.True(t, items[2].Date.IsZero())
}

func TestParseResponseLimit(t *testing.T) {
	items, err := ParseResponse([]byte(sampleFeed), 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestParseResponseGarbage(t *testing.T) {
	_, err := ParseResponse([]byte(`not json`), 5)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	c.RetryMin = time.Millisecond
	items, err := c.Fetch(context.Background(), srv.URL, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchFailures(t *testing.T) {
	c := NewClient(time.Second)

	_, err := c.Fetch(context.Background(), "", 5)
	assert.ErrorIs(t, err, ErrUnavailable)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, err = c.Fetch(context.Background(), srv.URL, 5)
	assert.ErrorIs(t, err, ErrUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Fetch(ctx, srv.URL, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
