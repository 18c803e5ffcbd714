package eastmoney

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripJSONP(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain object", `{"data":{"f162":13.2}}`, `{"data":{"f162":13.2}}`},
		{"jquery callback", `jQuery35108123456({"data":{"f162":13.2}});`, `{"data":{"f162":13.2}}`},
		{"named callback", `callback({"rc":0});`, `{"rc":0}`},
		{"surrounding whitespace", "\n  {\"rc\":0}\n", `{"rc":0}`},
		{"nested braces", `cb({"data":{"trends":["a,b"]}});`, `{"data":{"trends":["a,b"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StripJSONP(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripJSONP_NoObject(t *testing.T) {
	for _, body := range []string{"", "jQuery();", "<html></html>", "}{"} {
		_, err := StripJSONP(body)
		assert.ErrorIs(t, err, ErrNoJSONObject, "body %q", body)
	}
}
