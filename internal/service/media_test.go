package service

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func dataURI(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestMediaPolicyCheck(t *testing.T) {
	policy := NewMediaPolicy(1, 1)

	require.NoError(t, policy.Check("thumbnail", "", MediaImage))
	require.NoError(t, policy.Check("thumbnail", "https://cdn.example.com/a.png", MediaImage))
	require.NoError(t, policy.Check("thumbnail", dataURI("image/png", pngHeader), MediaImage))

	cases := map[string]struct {
		value string
		kind  MediaKind
	}{
		"plain http":     {"http://cdn.example.com/a.png", MediaImage},
		"relative path":  {"/uploads/a.png", MediaImage},
		"not base64":     {"data:image/png,raw", MediaImage},
		"broken base64":  {"data:image/png;base64,@@@@", MediaImage},
		"text as image":  {dataURI("image/png", []byte("hello world")), MediaImage},
		"image as audio": {dataURI("audio/mpeg", pngHeader), MediaAudio},
		"oversized":      {dataURI("image/png", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2*bytesPerMB)...)), MediaImage},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := policy.Check("thumbnail", tc.value, tc.kind)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Equal(t, "thumbnail", validationErr.Field)
		})
	}
}

func TestMediaPolicyDefaults(t *testing.T) {
	policy := NewMediaPolicy(0, -1)
	require.Equal(t, int64(5*bytesPerMB), policy.MaxImageBytes)
	require.Equal(t, int64(10*bytesPerMB), policy.MaxAudioBytes)

	require.Error(t, policy.CheckAll("photos", []string{"https://cdn.example.com/ok.png", "ftp://nope"}, MediaImage))
}

func TestSanitizeContentKeepsFormatting(t *testing.T) {
	out := sanitizeContent(contentPolicy(), ` <h2>Intro</h2><p onclick="x()">Hi <a href="https://example.com">link</a></p><script>alert(1)</script> `)
	require.Contains(t, out, "<h2>Intro</h2>")
	require.Contains(t, out, `href="https://example.com"`)
	require.NotContains(t, out, "onclick")
	require.NotContains(t, out, "script")
}
