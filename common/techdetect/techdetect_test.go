package techdetect

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/hrekt/hrekt/common/httpx"
	"github.com/stretchr/testify/require"
)

func TestTechnologies(t *testing.T) {
	got := Technologies(map[string]struct{}{"PHP": {}, "Nginx": {}, "Bootstrap": {}})
	require.Equal(t, []string{"Bootstrap", "Nginx", "PHP"}, got)
	require.Empty(t, Technologies(nil))
}

func TestDetect(t *testing.T) {
	detector, err := New()
	require.Nil(t, err)

	label, err := detector.Detect(context.Background(), &httpx.Success{
		StatusCode: 200,
		Headers:    http.Header{"Server": {"nginx"}},
		Body:       []byte("<html></html>"),
	})
	require.Nil(t, err)
	require.True(t, strings.Contains(label, "Nginx"), "label %q", label)
}

func TestDetect_cancelled(t *testing.T) {
	detector, err := New()
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = detector.Detect(ctx, &httpx.Success{})
	require.ErrorIs(t, err, context.Canceled)
}
